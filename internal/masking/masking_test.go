package masking

import (
	"testing"
	"unicode/utf8"

	"github.com/diewo77/scam-catalog/internal/matching"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"+95123456789", "+9512*******"},
		{"12345", "*****"},
		{"123", "***"},
		{"", ""},
		{"123456", "12345*"},
	}
	for _, tt := range tests {
		if got := Phone(tt.in); got != tt.want {
			t.Errorf("Phone(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if utf8.RuneCountInString(Phone(tt.in)) != utf8.RuneCountInString(tt.in) {
			t.Errorf("Phone(%q) changed length", tt.in)
		}
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ab@example.com", "**@ex*********"},
		{"scammer@gmail.com", "sc*****@gm*******"},
		{"a@b", "*@*"},
		{"no-at-sign", "**********"},
		{"a@b@c", "*****"},
		{"@x.io", "@x.**"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Email(tt.in); got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWebsite(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://scam.example.com", "https://sc**.com"},
		{"http://fraud.net", "http://fr***.net"},
		{"https://ab.io", "https://**.io"},
		{"https://localhost", "https://*********"},
		{"scam.example.com", "****************"},
		{"https://", "https://"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Website(tt.in); got != tt.want {
				t.Errorf("Website(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPaymentAccount(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1234567890", "******7890"},
		{"1234", "****"},
		{"12", "**"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PaymentAccount(tt.in); got != tt.want {
			t.Errorf("PaymentAccount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskingIsTotalOnArbitraryBytes(t *testing.T) {
	inputs := []string{"\xff\xfe\xfd", "@@@", "://", "a://b.c.d", "\x00\x01@\x02", "မြန်မာ@ဖုန်း.com"}
	for _, in := range inputs {
		for _, k := range matching.Kinds {
			_ = ForKind(k, in) // must not panic
		}
	}
}

func TestMultibyteRunesCountAsOneCharacter(t *testing.T) {
	got := Phone("၀၉၁၂၃၄၅၆")
	if want := "၀၉၁၂၃***"; got != want {
		t.Errorf("Phone() = %q, want %q", got, want)
	}
}

func TestForKind(t *testing.T) {
	if got := ForKind(matching.KindName, "Ko Aung"); got != "*******" {
		t.Errorf("names should be fully redacted, got %q", got)
	}
	if got := Full("ဖုန်း"); got != "*****" {
		t.Errorf("Full() = %q", got)
	}
	if got := ForKind(matching.KindPaymentAccount, "1234567890"); got != "******7890" {
		t.Errorf("ForKind(payment_account) = %q", got)
	}
}

func TestImagePlaceholder(t *testing.T) {
	tests := []struct {
		static, lang, want string
	}{
		{"/static/", "my", "/static/images/default_unpurchased_image_my.png"},
		{"/static", "en", "/static/images/default_unpurchased_image_en.png"},
		{"https://cdn.example.com/s/", "fr", "https://cdn.example.com/s/images/default_unpurchased_image_en.png"},
		{"", "MY", "/images/default_unpurchased_image_my.png"},
	}
	for _, tt := range tests {
		if got := ImagePlaceholder(tt.static, tt.lang); got != tt.want {
			t.Errorf("ImagePlaceholder(%q, %q) = %q, want %q", tt.static, tt.lang, got, tt.want)
		}
	}
}
