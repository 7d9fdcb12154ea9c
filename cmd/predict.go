package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	service "github.com/okian/gameaccess/internal/app"
	"github.com/okian/gameaccess/internal/domain/profile"
	"github.com/spf13/cobra"
)

var errNotWholeNumber = errors.New("not a whole number")

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify the catalog for one profile read from a YAML file",
		Example: "  gameaccess predict --profile ada.yaml\n" +
			"  gameaccess predict --profile ada.yaml --artifacts ./model --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("profile")
			dir, _ := cmd.Flags().GetString("artifacts")
			asJSON, _ := cmd.Flags().GetBool("json")
			return runPredict(cmd, path, dir, asJSON)
		},
	}
	cmd.Flags().String("profile", "", "YAML file holding the profile (required)")
	cmd.Flags().String("artifacts", "", "Artifact directory (overrides artifact_dir)")
	cmd.Flags().Bool("json", false, "Print the grouped result as JSON")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func runPredict(cmd *cobra.Command, path, dir string, asJSON bool) error {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.ArtifactDir = dir
	}

	p, err := loadProfile(path)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	svc := newService(cfg, nil)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	res, err := svc.Classify(ctx, p)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"name": res.Name, "groups": res.Outcome.Groups})
	}
	return printResult(cmd.OutOrStdout(), res)
}

// loadProfile reads a profile using the same koanf keys as the JSON API.
func loadProfile(path string) (profile.Profile, error) {
	var p profile.Profile
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return p, fmt.Errorf("load profile %s: %w", path, err)
	}
	if err := checkWholeNumbers(k); err != nil {
		return p, fmt.Errorf("decode profile %s: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", &p, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return p, fmt.Errorf("decode profile %s: %w", path, err)
	}
	return p, nil
}

// checkWholeNumbers rejects fractional values for the integer fields of a
// profile. The decoder would otherwise truncate them before range checks.
func checkWholeNumbers(k *koanf.Koanf) error {
	t := reflect.TypeOf(profile.Profile{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := f.Tag.Get("koanf")
		if f.Type.Kind() != reflect.Int || key == "" {
			continue
		}
		if v, ok := k.Get(key).(float64); ok && v != math.Trunc(v) {
			return fmt.Errorf("%w: %s must be a whole number, got %v", errNotWholeNumber, key, v)
		}
	}
	return nil
}

func printResult(w io.Writer, res service.Result) error {
	if _, err := fmt.Fprintf(w, "Game Recommendations for %s\n", res.Name); err != nil {
		return err
	}
	for _, g := range res.Outcome.Groups {
		if _, err := fmt.Fprintf(w, "\n### %s\n%s\n", g.Description, strings.Join(g.Games(), ", ")); err != nil {
			return err
		}
	}
	return nil
}
