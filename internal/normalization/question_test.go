package normalization

import "testing"

func TestQuestionKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"What is the pulp?", "what is the pulp"},
		{"what is the pulp?  ", "what is the pulp"},
		{"  What   is\tthe\npulp?!.", "what is the pulp"},
		{"Ｗｈａｔ is enamel", "what is enamel"},
		{"Trailing zero width\u200b", "trailing zero width"},
		{"Keeps inner, punctuation: ok", "keeps inner, punctuation: ok"},
		{"", ""},
		{"???", ""},
	}
	for _, tc := range cases {
		if got := QuestionKey(tc.in); got != tc.want {
			t.Errorf("QuestionKey(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestParseInputString(t *testing.T) {
	if got := ParseInputString("  INBDE "); got != "inbde" {
		t.Fatalf("ParseInputString: got %q", got)
	}
}
