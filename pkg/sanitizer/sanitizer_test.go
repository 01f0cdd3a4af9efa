package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already clean",
			input: "Maria Souza",
			want:  "Maria Souza",
		},
		{
			name:  "leading and trailing spaces",
			input: "  Maria Souza  ",
			want:  "Maria Souza",
		},
		{
			name:  "internal whitespace collapsed",
			input: "Maria   \t Souza",
			want:  "Maria Souza",
		},
		{
			name:  "newlines collapsed",
			input: "Maria\nSouza",
			want:  "Maria Souza",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain name",
			input: "João da Silva",
			want:  "João da Silva",
		},
		{
			name:  "case preserved",
			input: "MARIA souza",
			want:  "MARIA souza",
		},
		{
			name:  "name punctuation kept",
			input: "O'Neill Santos-Jr.",
			want:  "O'Neill Santos-Jr.",
		},
		{
			name:  "control and symbol runes stripped",
			input: "Maria <script>@Souza#",
			want:  "Maria scriptSouza",
		},
		{
			name:  "whitespace collapsed after stripping",
			input: "  Ana &&& Clara  ",
			want:  "Ana Clara",
		},
		{
			name:  "digits kept",
			input: "Sala 3 Recepção",
			want:  "Sala 3 Recepção",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid E.164 format",
			input: "+5511912345678",
			want:  "+5511912345678",
		},
		{
			name:  "brazilian mobile without prefix",
			input: "(11) 91234-5678",
			want:  "+5511912345678",
		},
		{
			name:  "with spaces and dots",
			input: "+55 11 91234.5678",
			want:  "+5511912345678",
		},
		{
			name:  "us number with country code",
			input: "+1 (212) 555-1234",
			want:  "+12125551234",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +5511912345678  ",
			want:  "+5511912345678",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "too short",
			input: "12345",
			want:  "",
		},
		{
			name:  "letters rejected",
			input: "call-me-maybe",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeContact(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "email lowercased",
			input: " Maria.Souza@Example.COM ",
			want:  "maria.souza@example.com",
		},
		{
			name:  "phone normalized to E.164",
			input: "(11) 91234-5678",
			want:  "+5511912345678",
		},
		{
			name:  "unparseable value kept as typed",
			input: "12345",
			want:  "12345",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeContact(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeContact(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
