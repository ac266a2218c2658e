package langdetect

import "testing"

func TestGuess(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "empty", text: "   ", want: ""},
		{name: "too short", text: "a", want: ""},
		{name: "korean", text: "안녕하세요, 선배님. 오늘 날씨가 정말 좋네요.", want: "Korean"},
		{name: "japanese", text: "こんにちは、先輩。今日はいい天気ですね。", want: "Japanese"},
		{name: "russian", text: "Привет, как у тебя сегодня дела?", want: "Russian"},
		{name: "thai", text: "สวัสดีครับ วันนี้อากาศดีมาก", want: "Thai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Guess(tt.text); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
