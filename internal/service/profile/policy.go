package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oggyb/matchbot/internal/config"
	"github.com/oggyb/matchbot/internal/db"
	svcErr "github.com/oggyb/matchbot/internal/errors"
)

// Per-field text limits, in runes.
const (
	MaxGender = 32
	MaxName   = 64
	MaxCourse = 64
	MaxBio    = 700
)

var (
	ErrAgeFormat = errors.New("age is not a number")
	ErrAgeRange  = errors.New("age out of range")
	ErrEmpty     = errors.New("empty text")
	ErrTooLong   = errors.New("text too long")
)

// TooLongError carries the limit a text answer exceeded.
type TooLongError struct {
	Limit int
}

func (e *TooLongError) Error() string { return fmt.Sprintf("text longer than %d", e.Limit) }

func (e *TooLongError) Unwrap() error { return ErrTooLong }

// Policy validates user input for profile fields.
type Policy struct {
	MinAge int
	MaxAge int

	validate *validator.Validate
}

// NewPolicy builds a policy for the given age range, clamped to [16,100].
func NewPolicy(minAge, maxAge int) *Policy {
	if minAge < config.AbsoluteMinAge {
		minAge = config.AbsoluteMinAge
	}
	if maxAge <= 0 || maxAge > config.AbsoluteMaxAge {
		maxAge = config.AbsoluteMaxAge
	}
	if minAge > maxAge {
		minAge, maxAge = config.AbsoluteMinAge, config.AbsoluteMaxAge
	}
	return &Policy{MinAge: minAge, MaxAge: maxAge, validate: validator.New()}
}

// NewPolicyFromConfig reads AGE_MIN/AGE_MAX.
func NewPolicyFromConfig(cfg *config.Config) *Policy {
	return NewPolicy(cfg.Policy.MinAge, cfg.Policy.MaxAge)
}

// ParseAge accepts digits only. A non-numeric answer wraps ErrAgeFormat, an
// out-of-range one wraps ErrAgeRange; both are validation errors.
func (p *Policy) ParseAge(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.IndexFunc(raw, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, validation(ErrAgeFormat, raw)
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		// more digits than fit an int is still just out of range
		return 0, validation(ErrAgeRange, raw)
	}
	if err := p.validate.Var(age, fmt.Sprintf("min=%d,max=%d", p.MinAge, p.MaxAge)); err != nil {
		return 0, validation(ErrAgeRange, raw)
	}
	return age, nil
}

// CheckText trims raw and enforces a non-empty value of at most max runes.
func (p *Policy) CheckText(raw string, max int) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", validation(ErrEmpty, "")
	}
	if err := p.validate.Var(text, fmt.Sprintf("max=%d", max)); err != nil {
		return "", validation(&TooLongError{Limit: max}, fmt.Sprintf("longer than %d", max))
	}
	return text, nil
}

// IsComplete reports whether every required profile field is filled. Age
// is checked against the absolute bounds, not the sign-up policy, so a
// range change never hides existing profiles.
func (p *Policy) IsComplete(prof *db.Profile) bool {
	if prof == nil {
		return false
	}
	return p.validate.Struct(prof) == nil
}

// HasAllAnswers reports whether the user went through every sign-up step.
// Unlike IsComplete it ignores the username, which comes from Telegram and
// not from the dialog.
func (p *Policy) HasAllAnswers(prof *db.Profile) bool {
	if prof == nil {
		return false
	}
	return p.validate.StructExcept(prof, "Username") == nil
}

// MissingUsername reports whether matches would have no handle to contact.
func MissingUsername(prof *db.Profile) bool {
	return prof == nil || strings.TrimSpace(prof.Username) == ""
}

func validation(reason error, detail string) error {
	return &svcErr.Error{Kind: svcErr.KindValidation, Msg: detail, Cause: reason}
}
