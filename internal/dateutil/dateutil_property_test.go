package dateutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"pgregory.net/rapid"

	"github.com/Gopher0727/LineDesk/internal/models"
)

// 存储格式一轮就稳定：parse → format 后再 parse → format 不再变化
func TestFormatStabilizesAfterOnePass(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		year := rapid.IntRange(1990, 2100).Draw(t, "year")
		month := rapid.IntRange(1, 12).Draw(t, "month")
		day := rapid.IntRange(1, 28).Draw(t, "day")

		variants := []string{
			fmt.Sprintf("%d/%d/%d", year, month, day),
			fmt.Sprintf("%04d-%02d-%02d", year, month, day),
			fmt.Sprintf("%04d-%02d-%02dT08:30:00", year, month, day),
		}
		idx := rapid.IntRange(0, len(variants)-1).Draw(t, "variant")
		s := variants[idx]

		d1, ok := ParseFlexible(s)
		if !ok {
			t.Fatalf("ParseFlexible(%q) failed", s)
		}
		once := FormatForStore(d1)

		d2, ok := ParseFlexible(once)
		if !ok {
			t.Fatalf("ParseFlexible(%q) failed after one pass", once)
		}
		twice := FormatForStore(d2)

		if once != twice {
			t.Fatalf("format not stable: %q -> %q -> %q", s, once, twice)
		}
	})
}

// AddDuration 对所有选项都严格往后推
func TestAddDurationAlwaysAdvances(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	optionGen := gen.OneConstOf(
		models.Duration30Days,
		models.Duration90Days,
		models.DurationHalfYear,
		models.DurationOneYear,
		models.DurationTrial7,
	)
	dayGen := gen.IntRange(0, 365*20)

	properties.Property("result is strictly after the base date", prop.ForAll(
		func(option models.DurationOption, offset int) bool {
			base := Midnight(mustParse("2010/1/1")).AddDate(0, 0, offset)
			result := AddDuration(base, option)
			return result.After(base)
		},
		optionGen, dayGen,
	))

	properties.TestingRun(t)
}

func mustParse(s string) time.Time {
	d, ok := ParseFlexible(s)
	if !ok {
		panic("unparseable test date: " + s)
	}
	return d
}
