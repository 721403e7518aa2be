package engine

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/pkg/errors"
)

// Op names the provider call an error came from.
type Op string

const (
	OpDescribeModes     Op = "describe launch templates"
	OpRunInstances      Op = "run instances"
	OpTagInstances      Op = "tag instances"
	OpDescribeInstances Op = "describe instances"
	OpDescribeHealth    Op = "describe instance status"
	OpTerminate         Op = "terminate instances"
)

type Kind int

const (
	KindProviderError Kind = iota
	KindModeNotFound
	KindUnknownInstanceId
)

func (k Kind) String() string {
	switch k {
	case KindModeNotFound:
		return "ModeNotFound"
	case KindUnknownInstanceId:
		return "UnknownInstanceId"
	default:
		return "ProviderError"
	}
}

type ModeNotFoundError struct {
	Mode string
}

func (e *ModeNotFoundError) Error() string {
	return fmt.Sprintf("mode `%s` does not exist", e.Mode)
}

type UnknownInstanceIdError struct {
	Ids   []string
	Cause error
}

func (e *UnknownInstanceIdError) Error() string {
	return fmt.Sprintf("one of instance id(s) %v does not exist", e.Ids)
}

func (e *UnknownInstanceIdError) Unwrap() error {
	return e.Cause
}

// ProviderError is any provider failure without a more specific domain meaning,
// including transport failures before a response was received.
type ProviderError struct {
	Op    Op
	Cause error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

var modeNotFoundCodes = map[string]struct{}{
	"InvalidLaunchTemplateName.NotFound":          {},
	"InvalidLaunchTemplateName.NotFoundException": {},
	"InvalidLaunchTemplateId.NotFound":            {},
}

var unknownInstanceCodes = map[string]struct{}{
	"InvalidInstanceID.Malformed": {},
	"InvalidInstanceID.NotFound":  {},
}

// Translate maps a provider error onto the domain taxonomy. subject is what the call was about:
// the mode name for catalog and launch calls, the instance ids for termination.
// Errors that are already domain errors are returned unchanged.
func Translate(op Op, err error, subject ...string) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		if _, found := modeNotFoundCodes[aerr.Code()]; found {
			mode := ""
			if len(subject) > 0 {
				mode = subject[0]
			}
			return &ModeNotFoundError{Mode: mode}
		}
		if _, found := unknownInstanceCodes[aerr.Code()]; found {
			return &UnknownInstanceIdError{Ids: subject, Cause: err}
		}
	}
	return &ProviderError{Op: op, Cause: err}
}

func KindOf(err error) Kind {
	var modeErr *ModeNotFoundError
	if errors.As(err, &modeErr) {
		return KindModeNotFound
	}
	var idErr *UnknownInstanceIdError
	if errors.As(err, &idErr) {
		return KindUnknownInstanceId
	}
	return KindProviderError
}

// IsDomainError reports whether err carries one of the domain error kinds.
func IsDomainError(err error) bool {
	var modeErr *ModeNotFoundError
	var idErr *UnknownInstanceIdError
	var providerErr *ProviderError
	return errors.As(err, &modeErr) || errors.As(err, &idErr) || errors.As(err, &providerErr)
}

// Render formats err for users, naming its kind, e.g. "virgo: (ModeNotFound) mode `x` does not exist".
func Render(err error) string {
	return fmt.Sprintf("virgo: (%s) %v", KindOf(err), err)
}
