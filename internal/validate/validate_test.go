package validate_test

import (
	"strings"
	"testing"

	"taskmanager/internal/apperror"
	"taskmanager/internal/validate"

	"github.com/stretchr/testify/assert"
)

func TestUsername(t *testing.T) {
	valid := []string{"abc", "alice", "Bob_99", strings.Repeat("a", 50)}
	for _, s := range valid {
		assert.True(t, validate.Username(s), s)
	}

	invalid := []string{"", "ab", strings.Repeat("a", 51), "with space", "dash-ed", "émile", "semi;colon"}
	for _, s := range invalid {
		assert.False(t, validate.Username(s), s)
	}
}

func TestEmail(t *testing.T) {
	valid := []string{"alice@x.com", "first.last+tag@mail.example.org", "a_b%c@d-e.io"}
	for _, s := range valid {
		assert.True(t, validate.Email(s), s)
	}

	invalid := []string{"", "alice", "alice@", "@x.com", "alice@x", "alice@x.c", "a@b@c.com", "alice@x.c0m"}
	for _, s := range invalid {
		assert.False(t, validate.Email(s), s)
	}
}

func TestPassword(t *testing.T) {
	assert.True(t, validate.Password("Abc12345!"))
	assert.True(t, validate.Password(`Zz9"zzzz`))
	assert.True(t, validate.Password("Abé1!xyz"))

	invalid := map[string]string{
		"too short":  "Ab1!",
		"multibyte":  "Abé1!xy",
		"no upper":   "abc12345!",
		"no lower":   "ABC12345!",
		"no digit":   "Abcdefgh!",
		"no symbol":  "Abc123456",
		"bad symbol": "Abc12345-",
	}
	for name, s := range invalid {
		assert.False(t, validate.Password(s), name)
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello world", validate.Sanitize("  <b>hello</b>\n\t  world  "))
	assert.Equal(t, "alert(1)", validate.Sanitize("<script>alert(1)</script>"))
	assert.Equal(t, "a < b", validate.Sanitize("a < b"))
	assert.Equal(t, "", validate.Sanitize("<br/>   "))
	assert.Equal(t, "a b c", validate.Sanitize("a\u00a0\u00a0b\vc"))
	assert.Equal(t, "x y", validate.Sanitize("x\u2003\u3000y"))

	assert.Nil(t, validate.SanitizePtr(nil))
	in := "  two   spaces "
	out := validate.SanitizePtr(&in)
	if assert.NotNil(t, out) {
		assert.Equal(t, "two spaces", *out)
	}
}

func TestRegistration_FailsFastInOrder(t *testing.T) {
	err := validate.Registration("x", "bad", "weak")
	assert.Equal(t, validate.MsgUsername, err.Error())
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = validate.Registration("alice", "bad", "weak")
	assert.Equal(t, validate.MsgEmail, err.Error())

	err = validate.Registration("alice", "alice@x.com", "weak")
	assert.Equal(t, validate.MsgPassword, err.Error())

	assert.NoError(t, validate.Registration("alice", "alice@x.com", "Abc12345!"))
}
