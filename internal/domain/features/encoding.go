package features

import (
	"github.com/okian/gameaccess/internal/domain/profile"
)

// Fixed encoding table for categorical profile fields.
var (
	sexCodes = map[profile.Sex]int{
		profile.Male:   0,
		profile.Female: 1,
	}
	answerCodes = map[profile.Answer]int{
		profile.Yes: 1,
		profile.No:  0,
	}
)

// EncodeSex maps Male to 0 and Female to 1.
func EncodeSex(s profile.Sex) (int, error) {
	code, ok := sexCodes[s]
	if !ok {
		return 0, &CategoricalError{Field: ColumnSex, Value: string(s)}
	}
	return code, nil
}

// EncodeAnswer maps Yes to 1 and No to 0. field names the column for errors.
func EncodeAnswer(field string, a profile.Answer) (int, error) {
	code, ok := answerCodes[a]
	if !ok {
		return 0, &CategoricalError{Field: field, Value: string(a)}
	}
	return code, nil
}

// SexFromCode is the reverse of EncodeSex.
func SexFromCode(code int) (profile.Sex, bool) {
	for s, c := range sexCodes {
		if c == code {
			return s, true
		}
	}
	return "", false
}

// AnswerFromCode is the reverse of EncodeAnswer.
func AnswerFromCode(code int) (profile.Answer, bool) {
	for a, c := range answerCodes {
		if c == code {
			return a, true
		}
	}
	return "", false
}
