package security

import (
	"strings"
	"testing"
)

func TestValidatePasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Passw0rd!", true},
		{"Director@123", true},
		{"Aa1@" + strings.Repeat("x", 60), true},
		{"Aa1@" + strings.Repeat("x", 61), false},
		{"Aa1@xyz", false},
		{"password1!", false},
		{"PASSWORD1!", false},
		{"Password!!", false},
		{"Password11", false},
		{"Password1#", false},
		{"Pass word1!", false},
		{"", false},
	}
	for _, tc := range cases {
		err := ValidatePasswordPolicy(tc.password)
		if (err == nil) != tc.ok {
			t.Errorf("ValidatePasswordPolicy(%q) = %v, want ok=%v", tc.password, err, tc.ok)
		}
	}
}
