package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ruteri/doc-signing-backend/api"
	"github.com/ruteri/doc-signing-backend/api/clients"
	"github.com/ruteri/doc-signing-backend/cmd/flags"
	"github.com/ruteri/doc-signing-backend/document"
	"github.com/ruteri/doc-signing-backend/signing"
	"github.com/urfave/cli/v2"
)

// exitNotValid is the exit status of verify when the document is not valid.
const exitNotValid = 2

var flagServer = &cli.StringFlag{
	Name:    "server",
	Usage:   "docsign server address, e.g. http://127.0.0.1:8080. When empty the operations run locally against --storage",
	EnvVars: []string{"DOCSIGN_SERVER"},
}

var flagName = &cli.StringFlag{
	Name:     "name",
	Required: true,
	Usage:    "display name of the new identity",
}

var flagPassword = &cli.StringFlag{
	Name:     "password",
	Required: true,
	Usage:    "identity password",
	EnvVars:  []string{"DOCSIGN_PASSWORD"},
}

var flagIdentity = &cli.StringFlag{
	Name:     "identity",
	Required: true,
	Usage:    "identity ID",
}

var flagIn = &cli.StringFlag{
	Name:     "in",
	Required: true,
	Usage:    "input document",
}

var flagOut = &cli.StringFlag{
	Name:     "out",
	Required: true,
	Usage:    "output document",
}

var flagFilename = &cli.StringFlag{
	Name:  "filename",
	Usage: "file name recorded in the registry, defaults to the base name of --in",
}

var flagJSON = &cli.BoolFlag{
	Name:  "json",
	Usage: "print the verification report as JSON",
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docsign",
		Usage: "Sign and verify documents",
		Flags: append(append([]cli.Flag{flagServer}, flags.StorageFlags...), flags.LogFlags...),
		Commands: []*cli.Command{
			{
				Name:  "enroll",
				Usage: "create a signing identity",
				Flags: []cli.Flag{flagName, flagPassword},
				Action: func(cCtx *cli.Context) error {
					service, err := newService(cCtx)
					if err != nil {
						return err
					}
					identity, err := service.CreateIdentity(cCtx.Context, cCtx.String(flagName.Name), cCtx.String(flagPassword.Name))
					if err != nil {
						return fmt.Errorf("enrollment failed: %w", err)
					}
					return printJSON(cCtx, identity)
				},
			},
			{
				Name:  "identity",
				Usage: "show the public view of an identity",
				Flags: []cli.Flag{flagIdentity},
				Action: func(cCtx *cli.Context) error {
					service, err := newService(cCtx)
					if err != nil {
						return err
					}
					identity, err := service.GetIdentity(cCtx.Context, cCtx.String(flagIdentity.Name))
					if err != nil {
						return err
					}
					return printJSON(cCtx, identity)
				},
			},
			{
				Name:  "sign",
				Usage: "sign a document",
				Flags: []cli.Flag{flagIdentity, flagPassword, flagIn, flagOut, flagFilename},
				Action: func(cCtx *cli.Context) error {
					service, err := newService(cCtx)
					if err != nil {
						return err
					}
					return signDocument(cCtx, service)
				},
			},
			{
				Name:  "verify",
				Usage: "verify a signed document, exits with status 2 unless the signature is valid",
				Flags: []cli.Flag{flagIn, flagJSON},
				Action: func(cCtx *cli.Context) error {
					service, err := newService(cCtx)
					if err != nil {
						return err
					}
					return verifyDocument(cCtx, service)
				},
			},
			{
				Name:  "inspect",
				Usage: "report whether a document carries a signature",
				Flags: []cli.Flag{flagIn},
				Action: func(cCtx *cli.Context) error {
					service, err := newService(cCtx)
					if err != nil {
						return err
					}
					doc, err := os.ReadFile(cCtx.String(flagIn.Name))
					if err != nil {
						return err
					}
					inspect, err := service.Inspect(cCtx.Context, doc)
					if err != nil {
						return err
					}
					return printJSON(cCtx, inspect)
				},
			},
			{
				Name:  "canonicalize",
				Usage: "write the canonical form of a document and print its content digest",
				Flags: []cli.Flag{flagIn, flagOut},
				Action: func(cCtx *cli.Context) error {
					doc, err := os.ReadFile(cCtx.String(flagIn.Name))
					if err != nil {
						return err
					}
					canonical, err := document.Canonicalize(doc)
					if err != nil {
						return err
					}
					if err := os.WriteFile(cCtx.String(flagOut.Name), canonical, 0o644); err != nil {
						return err
					}
					fmt.Fprintln(cCtx.App.Writer, document.Digest(canonical).String())
					return nil
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newService returns the HTTP client when --server is set, otherwise the
// in-process service over the configured storage.
func newService(cCtx *cli.Context) (api.SigningService, error) {
	if server := cCtx.String(flagServer.Name); server != "" {
		return clients.NewDocsignClient(server), nil
	}

	cfg, err := flags.LoadConfig(cCtx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := flags.SetupLogger(cfg, cCtx.App.ErrWriter)
	services, err := flags.BuildServices(cfg, logger)
	if err != nil {
		return nil, err
	}
	return newLocalService(services), nil
}

type signOutput struct {
	Out           string `json:"out"`
	Signature     string `json:"signature"`
	PublicKey     string `json:"public_key"`
	ContentDigest string `json:"content_digest"`
	Registered    bool   `json:"registered"`
}

func signDocument(cCtx *cli.Context, service api.SigningService) error {
	in := cCtx.String(flagIn.Name)
	doc, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	filename := cCtx.String(flagFilename.Name)
	if filename == "" {
		filename = filepath.Base(in)
	}

	signed, err := service.Sign(cCtx.Context, doc, cCtx.String(flagIdentity.Name), cCtx.String(flagPassword.Name), filename)
	if err != nil {
		return fmt.Errorf("signing failed: %w", err)
	}

	out := cCtx.String(flagOut.Name)
	if err := os.WriteFile(out, signed.Signed, 0o644); err != nil {
		return err
	}

	return printJSON(cCtx, &signOutput{
		Out:           out,
		Signature:     signed.Signature.String(),
		PublicKey:     signed.PublicKey.String(),
		ContentDigest: signed.ContentDigest.String(),
		Registered:    signed.Registered,
	})
}

func verifyDocument(cCtx *cli.Context, service api.SigningService) error {
	doc, err := os.ReadFile(cCtx.String(flagIn.Name))
	if err != nil {
		return err
	}

	report, err := service.Verify(cCtx.Context, doc)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if cCtx.Bool(flagJSON.Name) {
		if err := printJSON(cCtx, report); err != nil {
			return err
		}
	} else {
		printReport(cCtx, report)
	}

	if report.Outcome != signing.OutcomeValid {
		return cli.Exit("", exitNotValid)
	}
	return nil
}

func printReport(cCtx *cli.Context, report *api.VerifyResponse) {
	w := cCtx.App.Writer
	fmt.Fprintf(w, "outcome: %s\n", report.Outcome)
	if report.PublicKey != nil {
		fmt.Fprintf(w, "public key: %s\n", report.PublicKey)
	}
	if report.SignerID != "" {
		fmt.Fprintf(w, "signer: %s (%s)\n", report.SignerName, report.SignerID)
	}
	if report.Entry != nil {
		fmt.Fprintf(w, "signed at: %s\n", report.Entry.CreatedAt.UTC().Format(time.RFC3339))
	}
	if report.Reason != "" {
		fmt.Fprintf(w, "reason: %s\n", report.Reason)
	}
}

func printJSON(cCtx *cli.Context, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cCtx.App.Writer, string(encoded))
	return nil
}
