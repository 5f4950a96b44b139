package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v3"

	_ "github.com/KimMachineGun/automemlimit"
	_ "go.uber.org/automaxprocs"
)

func main() {
	app := &cli.App{
		Name:        "vegepoly",
		Description: "Poisson-disc vegetation point generator for polygon CSV exports",
		Commands: []*cli.Command{
			{
				Name:    "generate",
				Aliases: []string{"g"},
				Usage:   "generate vegetation points for every polygon of a CSV file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:      "input",
						Aliases:   []string{"i"},
						Required:  true,
						TakesFile: true,
					},
					&cli.StringFlag{
						Name:        "output",
						Aliases:     []string{"o"},
						DefaultText: "Export <timestamp>.txt in the configured export directory",
					},
					&cli.IntFlag{
						Name:    "vegetation-type",
						Aliases: []string{"t"},
						Value:   1,
						Usage:   "1=Trees 2=Surfaces 3=Rocailles",
					},
					&cli.StringFlag{
						Name:  "density",
						Usage: "minimum distance between points, overrides the type profile",
					},
					&cli.StringFlag{
						Name:  "variation",
						Usage: "export jitter magnitude, overrides the type profile",
					},
					&cli.IntFlag{
						Name:        "type-value",
						DefaultText: "from the type profile",
					},
					&cli.IntFlag{
						Name:        "seed",
						Usage:       "random seed for reproducible runs",
						DefaultText: "time-based",
					},
					&cli.BoolFlag{
						Name:  "stats",
						Usage: "write a runtime stats report next to the export",
					},
				},
				Action: generate,
			},
			{
				Name:  "preview",
				Usage: "sample the first polygon of a CSV file and print it as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:      "input",
						Aliases:   []string{"i"},
						Required:  true,
						TakesFile: true,
					},
					&cli.IntFlag{
						Name:    "vegetation-type",
						Aliases: []string{"t"},
						Value:   1,
					},
					&cli.StringFlag{
						Name: "density",
					},
					&cli.StringFlag{
						Name: "variation",
					},
				},
				Action: preview,
			},
			{
				Name:  "defaults",
				Usage: "print the effective parameters for a vegetation type",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "vegetation-type",
						Aliases: []string{"t"},
						Value:   1,
					},
				},
				Action: defaults,
			},
			{
				Name:  "serve",
				Usage: "serve the local generation api",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8607",
					},
				},
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// settingsPath places the settings database under the user config
// directory, falling back to the working directory.
func settingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "vegepoly-settings.db"
	}
	return filepath.Join(dir, "vegepoly", "settings.db")
}

func floatFlag(ctx *cli.Context, name string) (float64, bool, error) {
	raw := ctx.String(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, true, nil
}
