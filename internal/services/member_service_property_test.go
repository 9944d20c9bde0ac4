package services

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Gopher0727/LineDesk/internal/dateutil"
	"github.com/Gopher0727/LineDesk/internal/models"
)

// 加值单调性：只要写前的 expireAt 是有效日期，写后的 expireAt 不会更早。
// 覆盖所有时长选项和任意的当前到期偏移（过去与未来都取）。
func TestTopUp_MonotonicityProperty(t *testing.T) {
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
	// 到期日相对今天的偏移，负数表示已过期
	offsetGen := gen.IntRange(-400, 400)

	properties.Property("top-up never rolls back a valid expiry", prop.ForAll(
		func(option models.DurationOption, offset int) bool {
			svc, store := newMemberEnv(t)
			row := seedMember(t, store, "U001", "pro", "active", days(-500), days(offset))

			before, ok := dateutil.ParseFlexible(days(offset))
			if !ok {
				return false
			}

			result, err := svc.TopUp(context.Background(), row, option, "U001")
			if err != nil {
				return false
			}
			after, ok := dateutil.ParseFlexible(result.ExpireAt)
			if !ok {
				return false
			}
			return !dateutil.Midnight(after).Before(dateutil.Midnight(before))
		},
		optionGen, offsetGen,
	))

	properties.TestingRun(t)
}
