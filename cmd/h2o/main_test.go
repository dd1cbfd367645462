package main

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/h2o/internal/config"
	"github.com/verte-zerg/h2o/internal/intake"
	"github.com/verte-zerg/h2o/internal/model"
	"github.com/verte-zerg/h2o/internal/publicip"
)

func ptr[T any](v T) *T {
	return &v
}

func TestMergeConfigFlagsOverrideFile(t *testing.T) {
	root := newRootCmd()
	if err := root.ParseFlags([]string{"--units", "4", "--provider", "a=http://a.test"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	fileCfg := config.FileConfig{
		Tracker: config.TrackerConfig{
			Units:        ptr(10),
			UnitVolumeMl: ptr(500),
		},
		Footer: config.FooterConfig{
			Providers: ptr([]string{"b=http://b.test"}),
			IPTimeout: ptr("3s"),
			Clock:     ptr(false),
		},
	}
	cfg, err := mergeConfig(root, fileCfg)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if cfg.Units != 4 {
		t.Fatalf("expected flag units 4, got %d", cfg.Units)
	}
	if cfg.UnitVolumeMl != 500 {
		t.Fatalf("expected file unit-ml 500, got %d", cfg.UnitVolumeMl)
	}
	if cfg.GoalLiters != intake.DefaultGoalLiters {
		t.Fatalf("expected default goal, got %v", cfg.GoalLiters)
	}
	if len(cfg.Providers) != 1 || cfg.Providers[0] != "a=http://a.test" {
		t.Fatalf("expected flag providers, got %v", cfg.Providers)
	}
	if cfg.IPTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.IPTimeout)
	}
	if cfg.Clock {
		t.Fatalf("expected clock disabled from file")
	}
}

func TestMergeConfigRejectsBadDuration(t *testing.T) {
	root := newRootCmd()
	if err := root.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	_, err := mergeConfig(root, config.FileConfig{Footer: config.FooterConfig{IPTimeout: ptr("soon")}})
	if err == nil || !strings.Contains(err.Error(), "ip-timeout") {
		t.Fatalf("expected ip-timeout error, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	base := model.Config{
		Units:        intake.DefaultUnits,
		UnitVolumeMl: intake.DefaultUnitVolumeMl,
		GoalLiters:   intake.DefaultGoalLiters,
		IPSource:     model.IPSourceProviders,
	}
	if err := validateConfig(base); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*model.Config)
		want   string
	}{
		{"units", func(c *model.Config) { c.Units = 0 }, "--units"},
		{"unit-ml", func(c *model.Config) { c.UnitVolumeMl = -1 }, "--unit-ml"},
		{"goal", func(c *model.Config) { c.GoalLiters = 0 }, "--goal-liters"},
		{"source", func(c *model.Config) { c.IPSource = "dns" }, "--ip-source"},
		{"provider", func(c *model.Config) { c.Providers = []string{"x=ftp://nope"} }, "--provider"},
		{"instance", func(c *model.Config) { c.IPSource = model.IPSourceInstance; c.Instance = "" }, "--instance"},
		{"timeout", func(c *model.Config) { c.IPTimeout = -time.Second }, "--ip-timeout"},
	}
	for _, tc := range cases {
		cfg := base
		tc.mutate(&cfg)
		err := validateConfig(cfg)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error mentioning %s, got %v", tc.name, tc.want, err)
		}
	}
}

func TestBuildSource(t *testing.T) {
	cfg := model.Config{IPSource: model.IPSourceProviders}
	src, err := buildSource(cfg, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	chain, ok := src.(*publicip.Chain)
	if !ok {
		t.Fatalf("expected *publicip.Chain, got %T", src)
	}
	if got := len(chain.Providers()); got != len(publicip.DefaultProviders()) {
		t.Fatalf("expected default providers, got %d", got)
	}

	cfg = model.Config{IPSource: model.IPSourceInstance, Instance: "/tmp/instance.json"}
	src, err = buildSource(cfg, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	inst, ok := src.(*publicip.Instance)
	if !ok || inst.Location() != "/tmp/instance.json" {
		t.Fatalf("unexpected instance source: %#v", src)
	}

	src, err = buildSource(model.Config{IPSource: model.IPSourceNone}, nil)
	if err != nil || src != nil {
		t.Fatalf("expected no source, got %v %v", src, err)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	tmpl := defaultConfigTemplate()
	for _, key := range []string{"[tracker]", "[footer]", "unit-ml", "ip-source", "clock-layout"} {
		if !strings.Contains(tmpl, key) {
			t.Fatalf("template missing %s", key)
		}
	}
}
