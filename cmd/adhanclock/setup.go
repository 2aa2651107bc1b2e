package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
	yaml "go.yaml.in/yaml/v3"

	"adhanclock/internal/config"
	"adhanclock/internal/prayertimes"
	"adhanclock/internal/resolver"
)

const defaultConfigPath = "adhanclock.json"

type answers struct {
	mode        string
	lat, lng    string
	method      string
	mawaqitFile string
	fajrVolume  string
	volume      string
	updateTime  string
}

func setup(ctx *cli.Context) error {
	path := ctx.String("config")
	if path == "" {
		path = defaultConfigPath
	}
	a := answers{
		mode:       string(resolver.ModeCalculated),
		method:     "MWL",
		fajrVolume: strconv.Itoa(resolver.DefaultVolume),
		volume:     strconv.Itoa(resolver.DefaultVolume),
		updateTime: resolver.DefaultUpdateTime,
	}

	methods := make([]huh.Option[string], 0, len(prayertimes.MethodNames()))
	for _, m := range prayertimes.MethodNames() {
		methods = append(methods, huh.NewOption(m, m))
	}
	validVolume := func(s string) error { _, err := config.ParseVolume("volume", s); return err }
	validTime := func(s string) error { _, _, err := config.ParseTime("update_time", s); return err }
	validFloat := func(s string) error {
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return fmt.Errorf("not a number")
		}
		return nil
	}

	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Prayer times source").
				Options(
					huh.NewOption("Calculate from location", string(resolver.ModeCalculated)),
					huh.NewOption("Mawaqit schedule file", string(resolver.ModeMawaqit)),
				).Value(&a.mode),
		),
		huh.NewGroup(
			huh.NewInput().Title("Latitude").Value(&a.lat).Validate(validFloat),
			huh.NewInput().Title("Longitude").Value(&a.lng).Validate(validFloat),
			huh.NewSelect[string]().Title("Calculation method").Options(methods...).Value(&a.method),
		).WithHideFunc(func() bool { return a.mode != string(resolver.ModeCalculated) }),
		huh.NewGroup(
			huh.NewInput().Title("Mawaqit schedule file").Value(&a.mawaqitFile),
		).WithHideFunc(func() bool { return a.mode != string(resolver.ModeMawaqit) }),
		huh.NewGroup(
			huh.NewInput().Title("Fajr volume (0-100)").Value(&a.fajrVolume).Validate(validVolume),
			huh.NewInput().Title("Volume for the other prayers (0-100)").Value(&a.volume).Validate(validVolume),
			huh.NewInput().Title("Daily refresh time (HH:MM)").Value(&a.updateTime).Validate(validTime),
		),
	).Run(); err != nil {
		return cli.NewExitError("adhanclock: setup: "+err.Error(), 1)
	}

	cfg, err := a.config()
	if err != nil {
		return fail(ctx, err)
	}
	if err := writeConfig(afero.NewOsFs(), path, cfg); err != nil {
		return cli.NewExitError("adhanclock: setup: "+err.Error(), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "wrote %s; install with: adhanclock update --config %s\n", path, path)
	return nil
}

func (a answers) config() (*config.Config, error) {
	g := config.GeneralConfig{Mode: a.mode, UpdateTime: strings.TrimSpace(a.updateTime)}
	switch resolver.Mode(a.mode) {
	case resolver.ModeMawaqit:
		g.MawaqitFile = strings.TrimSpace(a.mawaqitFile)
		if g.MawaqitFile == "" {
			return nil, config.Errorf("mawaqit_file", "a schedule file is required")
		}
	default:
		lat, err := strconv.ParseFloat(strings.TrimSpace(a.lat), 64)
		if err != nil {
			return nil, config.Errorf("lat", "invalid number %q", a.lat)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(a.lng), 64)
		if err != nil {
			return nil, config.Errorf("lng", "invalid number %q", a.lng)
		}
		g.Location = &config.Location{Lat: &lat, Lng: &lng}
		g.Method = a.method
	}

	fajr, err := config.ParseVolume("fajr_volume", a.fajrVolume)
	if err != nil {
		return nil, err
	}
	other, err := config.ParseVolume("volume", a.volume)
	if err != nil {
		return nil, err
	}
	g.DefaultVolume = &other
	return &config.Config{
		General: g,
		Prayers: map[string]config.PrayerConfig{"fajr": {Volume: &fajr}},
	}, nil
}

// writeConfig stores cfg as indented JSON, or YAML for a .yaml/.yml path,
// after checking it decodes strictly.
func writeConfig(fs afero.Fs, path string, cfg *config.Config) error {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		if b, err = jsonToYAML(b); err != nil {
			return err
		}
	}
	if _, err := config.Decode(path, b); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, b, 0o644)
}

// jsonToYAML re-encodes a JSON document through its generic form, keeping
// the json field names as YAML keys.
func jsonToYAML(b []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}
