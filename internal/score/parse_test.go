package score

import "testing"

func TestParseScore(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
		ok    bool
	}{
		{name: "score prefix", reply: "Score: 7", want: 7, ok: true},
		{name: "rating prefix", reply: "Rating: 9", want: 9, ok: true},
		{name: "prefix mid-sentence", reply: "The score: 3 for this message", want: 3, ok: true},
		{name: "fraction", reply: "8/10", want: 8, ok: true},
		{name: "fraction with spaces", reply: "I'd give it a 6 / 10", want: 6, ok: true},
		{name: "prefix and fraction", reply: "Rating: 4/10", want: 4, ok: true},
		{name: "out of ten", reply: "7 out of 10", want: 7, ok: true},
		{name: "out of ten mid-sentence", reply: "I'd rate this 9 out of 10", want: 9, ok: true},
		{name: "bare digit", reply: "8", want: 8, ok: true},
		{name: "digit at end", reply: "The answer is 6", want: 6, ok: true},
		{name: "ten", reply: "This deserves a 10", want: 10, ok: true},
		{name: "first standalone wins", reply: "Between 3 and 8, I'd choose 7", want: 3, ok: true},
		{name: "skips out-of-range standalone", reply: "Not a 15, but definitely a 8", want: 8, ok: true},
		{name: "conversational", reply: "I'd say 7/10 for that one", want: 7, ok: true},
		{name: "out-of-range prefix rejected", reply: "Score: 15", ok: false},
		{name: "zero rejected", reply: "Rating: 0", ok: false},
		{name: "no number", reply: "very funny!", ok: false},
		{name: "empty", reply: "", ok: false},
		{name: "prose only", reply: "That message is hilarious but I cannot rate it.", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseScore(tt.reply)
			if ok != tt.ok {
				t.Fatalf("ParseScore(%q) ok = %v, want %v", tt.reply, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("ParseScore(%q) = %d, want %d", tt.reply, got, tt.want)
			}
		})
	}
}
