package native

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	// ResultTimeout is returned by wait-style entry points when the timeout elapsed first
	ResultTimeout common.VkResult = 2
	// ResultIncomplete is returned by enumerations when the output array was too small
	ResultIncomplete common.VkResult = 5
)

// Check converts a native status into an error naming the call that produced it. Every
// status other than VKSuccess is treated as a failure; callers that accept other success
// codes (timeouts, incomplete enumerations) must handle them before calling Check.
func Check(res common.VkResult, call string) error {
	if res == core1_0.VKSuccess {
		return nil
	}

	err := res.ToError()
	if err == nil {
		err = errors.Newf("unexpected status %d", int(res))
	}
	return errors.Wrapf(err, "%s", call)
}
