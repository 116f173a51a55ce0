package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	require.Error(t, err)
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	return fe
}

func TestNewValidator_CompilesEverySchema(t *testing.T) {
	v := newTestValidator(t)

	for _, name := range []string{
		SchemaLogin, SchemaRegisterCompany, SchemaUserUpdate, SchemaUserRoles,
		SchemaProjectCreate, SchemaProjectUpdate, SchemaTaskCreate, SchemaTaskUpdate,
		SchemaCommentCreate, SchemaCommentUpdate, SchemaInvitationCreate, SchemaInvitationAccept,
	} {
		assert.Contains(t, v.schemas, name)
	}
}

func TestValidate_Valid(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		schema string
		body   string
	}{
		{SchemaLogin, `{"username":"alice","password":"secret"}`},
		{SchemaRegisterCompany, `{"name":"Acme","firstAdmin":{"username":"alice","displayedName":"Alice","email":"alice@acme.test","password":"secret1"}}`},
		{SchemaUserUpdate, `{}`},
		{SchemaUserUpdate, `{"email":"new@acme.test"}`},
		{SchemaUserRoles, `{"roles":["MEMBER","ADMIN"]}`},
		{SchemaProjectCreate, `{"name":"Apollo","description":"Moon"}`},
		{SchemaProjectUpdate, `{"description":"Mars"}`},
		{SchemaTaskCreate, `{"projectId":1,"name":"Design","description":"Draw it","assigneeId":null,"dueTo":"2026-01-02T15:04:05Z"}`},
		{SchemaTaskUpdate, `{"status":"IN_PROGRESS"}`},
		{SchemaCommentCreate, `{"taskId":3,"contents":"looks good"}`},
		{SchemaCommentUpdate, `{"contents":"edited"}`},
		{SchemaInvitationCreate, `{"email":"bob@acme.test"}`},
		{SchemaInvitationAccept, `{"username":"bob","displayedName":"Bob","password":"hunter2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			assert.NoError(t, v.Validate(tt.schema, []byte(tt.body)))
		})
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	v := newTestValidator(t)

	fe := fieldErrors(t, v.Validate(SchemaTaskCreate, []byte(`{"name":"Design"}`)))

	assert.Equal(t, "is required", fe["projectId"])
	assert.Equal(t, "is required", fe["description"])
	assert.NotContains(t, fe, "name")
}

func TestValidate_NestedRequiredFieldsUseDottedPath(t *testing.T) {
	v := newTestValidator(t)

	fe := fieldErrors(t, v.Validate(SchemaRegisterCompany, []byte(`{"name":"Acme","firstAdmin":{"username":"alice"}}`)))

	assert.Equal(t, "is required", fe["firstAdmin.password"])
	assert.Equal(t, "is required", fe["firstAdmin.email"])
	assert.Equal(t, "is required", fe["firstAdmin.displayedName"])
}

func TestValidate_BlankText(t *testing.T) {
	v := newTestValidator(t)

	fe := fieldErrors(t, v.Validate(SchemaProjectCreate, []byte(`{"name":"   ","description":"Moon"}`)))

	assert.Equal(t, "must not be blank", fe["name"])
	assert.Len(t, fe, 1)
}

func TestValidate_Violations(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name   string
		schema string
		body   string
		field  string
	}{
		{"project name too long", SchemaProjectCreate, `{"name":"` + strings.Repeat("p", 21) + `","description":"d"}`, "name"},
		{"task name too long", SchemaTaskUpdate, `{"name":"` + strings.Repeat("t", 31) + `"}`, "name"},
		{"unknown status", SchemaTaskUpdate, `{"status":"BLOCKED"}`, "status"},
		{"bad due date", SchemaTaskCreate, `{"projectId":1,"name":"n","description":"d","dueTo":"tomorrow"}`, "dueTo"},
		{"fractional project id", SchemaTaskCreate, `{"projectId":1.5,"name":"n","description":"d"}`, "projectId"},
		{"invalid email", SchemaInvitationCreate, `{"email":"not-an-email"}`, "email"},
		{"short password", SchemaInvitationAccept, `{"username":"bob","displayedName":"Bob","password":"12345"}`, "password"},
		{"unknown role", SchemaUserRoles, `{"roles":["ROOT"]}`, "roles.0"},
		{"empty roles", SchemaUserRoles, `{"roles":[]}`, "roles"},
		{"array body", SchemaLogin, `[]`, BodyField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := fieldErrors(t, v.Validate(tt.schema, []byte(tt.body)))
			assert.Contains(t, fe, tt.field)
			assert.NotEmpty(t, fe[tt.field])
		})
	}
}

func TestValidate_MalformedBody(t *testing.T) {
	v := newTestValidator(t)

	for _, body := range []string{``, `{"username":`, `not json`} {
		err := v.Validate(SchemaLogin, []byte(body))
		assert.ErrorIs(t, err, ErrMalformedBody, "body %q", body)
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	v := newTestValidator(t)

	err := v.Validate("nope", []byte(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedBody)
	var fe FieldErrors
	assert.False(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "unknown schema")
}

func TestDecode(t *testing.T) {
	v := newTestValidator(t)

	var dst struct {
		TaskID   int64  `json:"taskId"`
		Contents string `json:"contents"`
	}
	require.NoError(t, v.Decode(SchemaCommentCreate, []byte(`{"taskId":7,"contents":"hi"}`), &dst))
	assert.Equal(t, int64(7), dst.TaskID)
	assert.Equal(t, "hi", dst.Contents)

	err := v.Decode(SchemaCommentCreate, []byte(`{"taskId":7}`), &dst)
	fe := fieldErrors(t, err)
	assert.Equal(t, "is required", fe["contents"])
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	fe := FieldErrors{"name": "must not be blank", "email": "is required"}
	assert.Equal(t, "validation failed: email: is required; name: must not be blank", fe.Error())
}
