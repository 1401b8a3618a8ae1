package services

import (
	"errors"
	"strings"
	"testing"

	"socioBack/internal/models"
)

func TestValidateActivity(t *testing.T) {
	cases := []struct {
		name     string
		activity models.Activity
		wantErr  bool
	}{
		{"valid", models.Activity{Name: "Natación", Price: dec("350.00")}, false},
		{"free activity", models.Activity{Name: "Sala de lectura", Price: dec("0")}, false},
		{"name too short", models.Activity{Name: "Yo", Price: dec("10")}, true},
		{"name too long", models.Activity{Name: strings.Repeat("a", 101), Price: dec("10")}, true},
		{"accented name at limit", models.Activity{Name: strings.Repeat("á", 100), Price: dec("10")}, false},
		{"accented name too short", models.Activity{Name: "Fú", Price: dec("10")}, true},
		{"description too long", models.Activity{Name: "Tenis", Description: strings.Repeat("x", 501), Price: dec("10")}, true},
		{"accented description at limit", models.Activity{Name: "Tenis", Description: strings.Repeat("ñ", 500), Price: dec("10")}, false},
		{"negative price", models.Activity{Name: "Tenis", Price: dec("-1")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateActivity(tc.activity)
			if tc.wantErr {
				var validation *models.ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
