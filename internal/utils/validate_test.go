package utils

import "testing"

type sampleInput struct {
	Username string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Role     string `validate:"omitempty,oneof=user admin it"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		in         sampleInput
		wantFields []string
	}{
		{"valid", sampleInput{Username: "alice", Email: "alice@example.com", Role: "user"}, nil},
		{"missing username", sampleInput{Email: "alice@example.com"}, []string{"username"}},
		{"short username", sampleInput{Username: "ab", Email: "alice@example.com"}, []string{"username"}},
		{"bad email", sampleInput{Username: "alice", Email: "not-an-email"}, []string{"email"}},
		{"bad role", sampleInput{Username: "alice", Email: "alice@example.com", Role: "root"}, []string{"role"}},
		{"multiple", sampleInput{}, []string{"username", "email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Validate(tt.in)
			if len(tt.wantFields) == 0 {
				if fields != nil {
					t.Fatalf("Validate() = %v, want nil", fields)
				}
				return
			}
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("Validate() = %v, want keys %v", fields, tt.wantFields)
			}
			for _, k := range tt.wantFields {
				if _, ok := fields[k]; !ok {
					t.Errorf("missing field %q in %v", k, fields)
				}
			}
		})
	}
}

func TestValidateMessages(t *testing.T) {
	fields := Validate(sampleInput{Username: "ab", Email: "alice@example.com"})
	if got := fields["username"]; got != "must be at least 3 characters" {
		t.Errorf("min message = %q", got)
	}
	fields = Validate(sampleInput{Email: "alice@example.com"})
	if got := fields["username"]; got != "this field is required" {
		t.Errorf("required message = %q", got)
	}
}
