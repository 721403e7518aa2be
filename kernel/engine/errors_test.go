package engine

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		code string
		kind Kind
	}{
		{"template not found", "InvalidLaunchTemplateName.NotFound", KindModeNotFound},
		{"template not found exception", "InvalidLaunchTemplateName.NotFoundException", KindModeNotFound},
		{"template id not found", "InvalidLaunchTemplateId.NotFound", KindModeNotFound},
		{"malformed instance id", "InvalidInstanceID.Malformed", KindUnknownInstanceId},
		{"unknown instance id", "InvalidInstanceID.NotFound", KindUnknownInstanceId},
		{"throttled", "RequestLimitExceeded", KindProviderError},
		{"unauthorized", "UnauthorizedOperation", KindProviderError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Translate(OpTerminate, awserr.New(c.code, "provider says no", nil), "x")
			assert.Equal(t, c.kind, KindOf(err))
		})
	}
}

func TestTranslate_ModeNotFoundNamesMode(t *testing.T) {
	err := Translate(OpRunInstances, awserr.New("InvalidLaunchTemplateName.NotFoundException", "nope", nil), "ghost-mode")

	var modeErr *ModeNotFoundError
	require.ErrorAs(t, err, &modeErr)
	assert.Equal(t, "ghost-mode", modeErr.Mode)
	assert.Contains(t, err.Error(), "ghost-mode")
}

func TestTranslate_UnknownInstanceNamesIds(t *testing.T) {
	err := Translate(OpTerminate, awserr.New("InvalidInstanceID.Malformed", "nope", nil), "i-1", "bogus")

	var idErr *UnknownInstanceIdError
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, []string{"i-1", "bogus"}, idErr.Ids)
	assert.Equal(t, "one of instance id(s) [i-1 bogus] does not exist", err.Error())
}

func TestTranslate_ProviderErrorKeepsMessage(t *testing.T) {
	cause := awserr.New("UnauthorizedOperation", "You are not authorized to perform this operation.", nil)
	err := Translate(OpRunInstances, cause, "deathmatch")

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, OpRunInstances, providerErr.Op)
	assert.Contains(t, err.Error(), "You are not authorized to perform this operation.")
	assert.ErrorIs(t, err, cause)
}

func TestTranslate_TransportFailure(t *testing.T) {
	err := Translate(OpDescribeInstances, errors.New("dial tcp: connection refused"))
	assert.Equal(t, KindProviderError, KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestTranslate_WrappedAwsError(t *testing.T) {
	wrapped := errors.Wrap(awserr.New("InvalidInstanceID.NotFound", "gone", nil), "terminating")
	assert.Equal(t, KindUnknownInstanceId, KindOf(Translate(OpTerminate, wrapped, "i-9")))
}

func TestTranslate_PassesDomainErrorsThrough(t *testing.T) {
	original := &ModeNotFoundError{Mode: "ctf"}
	assert.Same(t, original, Translate(OpRunInstances, original, "other"))
	assert.Nil(t, Translate(OpRunInstances, nil))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ModeNotFound", KindModeNotFound.String())
	assert.Equal(t, "UnknownInstanceId", KindUnknownInstanceId.String())
	assert.Equal(t, "ProviderError", KindProviderError.String())
}

func TestRender(t *testing.T) {
	assert.Equal(t, "virgo: (ModeNotFound) mode `ghost-mode` does not exist", Render(&ModeNotFoundError{Mode: "ghost-mode"}))
	assert.Equal(t, "virgo: (UnknownInstanceId) one of instance id(s) [bogus] does not exist",
		Render(&UnknownInstanceIdError{Ids: []string{"bogus"}}))
	assert.Equal(t, "virgo: (ProviderError) terminate instances: boom",
		Render(&ProviderError{Op: OpTerminate, Cause: errors.New("boom")}))
}
