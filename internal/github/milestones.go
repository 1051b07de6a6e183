package github

import (
	"fmt"
	"strings"
)

// flourishes adds an extra line at contribution milestones.
var flourishes = map[int]string{
	1:   "Welcome to the library! The first one is a big deal. 🚀",
	5:   "Five merged contributions! You are on a roll. 🏅",
	10:  "Double digits! Ten merged pull requests. 🔟",
	25:  "Twenty-five merged pull requests. The library is better for every one of them. 🌟",
	50:  "Fifty! Half a hundred merged contributions. 🏆",
	100: "One hundred merged pull requests. Legendary. 💯",
}

// Message composes the celebration comment for a contributor's nth
// merged pull request.
func Message(login string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you @%s! 🎉 This is your %s merged pull request in this repository.", login, ordinal(count))
	if extra, ok := flourishes[count]; ok {
		b.WriteString("\n\n")
		b.WriteString(extra)
	}
	return b.String()
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
		// 11th, 12th, 13th
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
