package notify

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseChatID(t *testing.T) {
	cases := map[string]int64{
		"12345":          12345,
		" -1001234567 ": -1001234567,
	}
	for in, want := range cases {
		got, err := ParseChatID(in)
		if err != nil || got != want {
			t.Errorf("ParseChatID(%q) = %d, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "@channel", "12a"} {
		if _, err := ParseChatID(in); err == nil {
			t.Errorf("ParseChatID(%q) should fail", in)
		}
	}
}

func TestBound(t *testing.T) {
	long := strings.Repeat("글", MaxMessage+50)
	if n := utf8.RuneCountInString(Bound(long)); n != MaxMessage {
		t.Fatalf("bounded length = %d", n)
	}
	if Bound("짧은 메시지") != "짧은 메시지" {
		t.Fatalf("short message changed")
	}
}
