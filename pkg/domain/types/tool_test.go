package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/anglerlab/finbot/pkg/domain/types"
)

func TestToolNameValidate(t *testing.T) {
	gt.NoError(t, types.ToolCheckLegalSize.Validate())
	gt.NoError(t, types.ToolGetFishingWeather.Validate())
	gt.Error(t, types.ToolName("cast_line").Validate())
	gt.Error(t, types.ToolName("").Validate())
}

func TestFailureKind(t *testing.T) {
	gt.NoError(t, types.FailureUnsupportedInput.Validate())
	gt.NoError(t, types.FailureProviderUnavailable.Validate())
	gt.NoError(t, types.FailureInvalidParameters.Validate())
	gt.Error(t, types.FailureKind("timeout").Validate())

	gt.Bool(t, types.FailureProviderUnavailable.Retryable()).True()
	gt.Bool(t, types.FailureUnsupportedInput.Retryable()).False()
	gt.Bool(t, types.FailureInvalidParameters.Retryable()).False()
}
