package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "reply.txt", want: "reply.txt"},
		{name: "separators", in: " a/b\\c.txt ", want: "a_b_c.txt"},
		{name: "traversal", in: "../etc/passwd", wantErr: true},
		{name: "empty", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestDownloadName(t *testing.T) {
	tests := []struct {
		person string
		ext    string
		want   string
	}{
		{person: "Alex Thompson", ext: "pdf", want: "Alex_Thompson_resume.pdf"},
		{person: "  José  O'Neil ", ext: "docx", want: "Jos_O_Neil_resume.docx"},
		{person: "", ext: "html", want: "resume.html"},
		{person: "!!!", ext: "txt", want: "resume.txt"},
	}
	for _, tt := range tests {
		if got := DownloadName(tt.person, tt.ext); got != tt.want {
			t.Fatalf("DownloadName(%q) = %q, want %q", tt.person, got, tt.want)
		}
	}
}
