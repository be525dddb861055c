package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
	return path
}

func TestDefaultIsValid(t *testing.T) {
	test.That(t, Default().Validate(), test.ShouldBeNil)
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.EngineFrequency = 0
	cfg.MaxVelocity.Yaw = -1
	cfg.PhaseResetPhase = 2
	cfg.Walking.TrunkHeight = 0
	cfg.Legs.ThighLength = 0

	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 5)
	for _, name := range []string{"engine_frequency", "max_velocity.yaw", "phase_reset_phase", "walking", "trunk_height", "legs"} {
		test.That(t, err.Error(), test.ShouldContainSubstring, name)
	}
}

func TestValidateEngineRate(t *testing.T) {
	cfg := Default()
	cfg.EngineFrequency = 5
	cfg.Walking.Freq = 2
	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "too low")
}

func TestFormatFromPath(t *testing.T) {
	test.That(t, FormatFromPath("walk.yaml"), test.ShouldEqual, FormatYAML)
	test.That(t, FormatFromPath("walk.YML"), test.ShouldEqual, FormatYAML)
	test.That(t, FormatFromPath("walk.json"), test.ShouldEqual, FormatJSON)
	test.That(t, FormatFromPath("walk"), test.ShouldEqual, FormatJSON)
}

func TestReadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "walk.json", `{
		"engine_frequency": 200,
		"phase_reset": true,
		"walking": {"freq": 2, "foot_rise": 0.07},
		"legs": {"thigh_length": 0.25}
	}`)

	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.EngineFrequency, test.ShouldEqual, 200.0)
	test.That(t, cfg.PhaseReset, test.ShouldBeTrue)
	test.That(t, cfg.Walking.Freq, test.ShouldEqual, 2.0)
	test.That(t, cfg.Walking.FootRise, test.ShouldEqual, 0.07)
	test.That(t, cfg.Legs.ThighLength, test.ShouldEqual, 0.25)

	// omitted fields keep their defaults
	def := Default()
	test.That(t, cfg.Walking.TrunkHeight, test.ShouldEqual, def.Walking.TrunkHeight)
	test.That(t, cfg.Legs.TibiaLength, test.ShouldEqual, def.Legs.TibiaLength)
	test.That(t, cfg.MaxVelocity, test.ShouldResemble, def.MaxVelocity)
}

func TestReadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "walk.yaml", strings.Join([]string{
		"engine_frequency: 50",
		"max_velocity:",
		"  x: 0.3",
		"walking:",
		"  double_support_ratio: 0.2",
		"  kick_length: 0.12",
	}, "\n"))

	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.EngineFrequency, test.ShouldEqual, 50.0)
	test.That(t, cfg.MaxVelocity.X, test.ShouldEqual, 0.3)
	test.That(t, cfg.MaxVelocity.Yaw, test.ShouldEqual, Default().MaxVelocity.Yaw)
	test.That(t, cfg.Walking.DoubleSupportRatio, test.ShouldEqual, 0.2)
	test.That(t, cfg.Walking.KickLength, test.ShouldEqual, 0.12)
}

func TestReadEmptyFileIsDefault(t *testing.T) {
	path := writeFile(t, t.TempDir(), "walk.yaml", "")
	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, Default())
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing.json")

	path := writeFile(t, dir, "unknown.json", `{"walking": {"frequency": 2}}`)
	_, err = Read(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown.json")

	path = writeFile(t, dir, "unknown.yaml", "walking:\n  frequency: 2\n")
	_, err = Read(path)
	test.That(t, err, test.ShouldNotBeNil)

	path = writeFile(t, dir, "invalid.json", `{"walking": {"freq": -1}}`)
	_, err = Read(path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid config")
	test.That(t, err.Error(), test.ShouldContainSubstring, "freq")
}
