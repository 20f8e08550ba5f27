// genpass generates credentials from the command line using the same
// generator, scoring and profiles as the API.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/genpass/genpass-go/internal/crypto"
	"github.com/genpass/genpass-go/internal/model"
	"github.com/genpass/genpass-go/internal/service"
)

var version = "dev" // set by the linker

func main() {
	if err := newRootCmd(viper.New(), os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around its own viper instance so tests
// can run it in isolation.
func newRootCmd(v *viper.Viper, out io.Writer) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "genpass",
		Short:         "Generate random passwords with a strength score.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.genpass.yaml or ./.genpass.yaml)")

	cmd.AddCommand(newGenerateCmd(v))
	cmd.AddCommand(newProfilesCmd())

	return cmd
}

// initConfig reads an optional config file and GENPASS_* environment variables.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".genpass")
	}

	v.SetEnvPrefix("GENPASS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one or more passwords",
		Long: `Generates passwords from the selected character classes.

Classes left unset fall back to the chosen profile, or to lowercase and
digits when no profile is given. Each password is printed with its
strength score.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := sourceFromConfig(v)
			if err != nil {
				return err
			}

			req := model.GenerateRequest{
				Profile:   v.GetString("profile"),
				Length:    v.GetInt("length"),
				Lowercase: optionalBool(v, "lower"),
				Uppercase: optionalBool(v, "upper"),
				Digits:    optionalBool(v, "digits"),
				Symbols:   optionalBool(v, "symbols"),
			}

			count := v.GetInt("count")
			if count < 1 {
				count = 1
			}

			svc := service.NewGeneratorService(src)
			for i := 0; i < count; i++ {
				resp, err := svc.Generate(req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tstrength %d/%d\n", resp.Password, resp.Score, resp.MaxScore)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntP("length", "l", 0, fmt.Sprintf("password length, %d-%d (default %d or the profile's length)", crypto.MinLength, crypto.MaxLength, crypto.DefaultLength))
	flags.StringP("profile", "p", "", `preset: "simple", "secure", "ultrasecure" or "custom"`)
	flags.Bool("lower", false, "include lowercase letters")
	flags.Bool("upper", false, "include uppercase letters")
	flags.Bool("digits", false, "include digits")
	flags.Bool("symbols", false, "include symbols ("+crypto.SymbolChars+")")
	flags.IntP("count", "c", 1, "number of passwords to generate")
	flags.Bool("legacy-rand", false, "use the fast non-cryptographic random source")
	flags.Uint64("seed", 0, "seed the non-cryptographic source for reproducible output")

	for _, name := range []string{"length", "profile", "lower", "upper", "digits", "symbols", "count", "legacy-rand", "seed"} {
		v.BindPFlag(name, flags.Lookup(name))
	}

	return cmd
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List generation presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range service.NewGeneratorService(nil).Profiles() {
				if p.Name == crypto.ProfileCustom {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s choose length and classes yourself\n", p.Name)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %2d chars  %s\n", p.Name, p.Length, strings.Join(p.Classes, ", "))
			}
		},
	}
}

func sourceFromConfig(v *viper.Viper) (crypto.Source, error) {
	if seed := v.GetUint64("seed"); seed != 0 {
		return crypto.NewSeededSource(seed, seed), nil
	}
	if v.GetBool("legacy-rand") {
		return crypto.SourceByName("legacy")
	}
	return crypto.SourceByName(v.GetString("random-source"))
}

// optionalBool returns nil when key was not set by flag, env or config.
func optionalBool(v *viper.Viper, key string) *bool {
	if !v.IsSet(key) {
		return nil
	}
	b := v.GetBool(key)
	return &b
}
