package pages

import "strings"

// Section is a titled list of bullet points on an informational page.
type Section struct {
	Title string
	Items []string
}

// Helpline is one crisis contact.
type Helpline struct {
	Name    string
	Numbers []string
	URL     string
}

// TipSections are the mental-health tips, in display order.
var TipSections = []Section{
	{Title: "1. Self-Care Practices", Items: []string{
		"Prioritize sleep (7–9 hours for adults).",
		"Maintain a balanced diet; eat nutritious foods.",
		"Exercise regularly to boost mood and reduce stress.",
		"Take breaks and allow yourself downtime.",
	}},
	{Title: "2. Stress Management", Items: []string{
		"Practice deep breathing, meditation, or mindfulness.",
		"Try journaling to process emotions.",
		"Engage in hobbies or activities that bring joy.",
		"Set realistic goals and break tasks into smaller steps.",
	}},
	{Title: "3. Emotional Awareness", Items: []string{
		"Recognize and accept your feelings without judgment.",
		"Name your emotions (e.g., “I feel anxious”).",
		"Identify triggers and patterns of negative thinking.",
	}},
	{Title: "4. Social Support", Items: []string{
		"Connect with friends, family, or support groups.",
		"Share your feelings with someone you trust.",
		"Avoid isolating yourself; maintain healthy relationships.",
	}},
	{Title: "5. Coping Skills", Items: []string{
		"Use positive self-talk instead of self-criticism.",
		"Learn relaxation techniques like progressive muscle relaxation.",
		"Focus on what you can control; let go of what you cannot.",
	}},
	{Title: "6. Professional Help", Items: []string{
		"Seek therapy or counseling when needed.",
		"Consult a doctor or psychiatrist for severe symptoms.",
		"Use mental health helplines and online resources.",
	}},
	{Title: "7. Lifestyle Adjustments", Items: []string{
		"Limit alcohol, caffeine, and recreational drugs.",
		"Reduce screen time and social media stress.",
		"Establish a daily routine to maintain stability.",
	}},
	{Title: "8. Mindset & Resilience", Items: []string{
		"Practice gratitude daily.",
		"Celebrate small achievements.",
		"Learn from setbacks rather than dwelling on them.",
	}},
}

// IndiaHelplines are the national crisis lines listed first.
var IndiaHelplines = []Helpline{
	{Name: "Vandrevala Foundation Helpline", Numbers: []string{"1860 266 2345"}},
	{Name: "Snehi", Numbers: []string{"+91-22-2772 6771"}},
	{Name: "iCall (TISS)", Numbers: []string{"+91-22-2552 1111", "+91-9152987821"}},
	{Name: "AASRA", Numbers: []string{"+91-9820466726"}},
	{Name: "General Emergency (India)", Numbers: []string{"112 (Police / Ambulance / Fire)"}},
}

// InternationalHelplines are directories covering other countries.
var InternationalHelplines = []Helpline{
	{Name: "OpenCounseling Hotlines", URL: "https://www.opencounseling.com/suicide-hotlines"},
	{Name: "Find A Helpline", URL: "https://findahelpline.com"},
}

// WhenToSeekHelp lists warning signs that call for immediate support.
var WhenToSeekHelp = []string{
	"Thoughts of self-harm or suicide",
	"Feeling unable to keep yourself safe",
	"Severe anxiety, panic, or distress",
	"Experiencing or witnessing violence or abuse",
}

// PrivacySections are the privacy policy, in display order.
var PrivacySections = []Section{
	{Title: "1. What We Collect", Items: []string{
		"Account data (name, email), authentication tokens, and optional mood tracking entries that you create.",
		"Basic device and usage data for improving the app experience.",
	}},
	{Title: "2. How We Use Data", Items: []string{
		"To provide core features (login, dashboard, mood tracking) and personalize your experience.",
		"To maintain security, troubleshoot issues, and improve product performance.",
	}},
	{Title: "3. Data Storage & Security", Items: []string{
		"We store certain items for your browser (e.g., tokens, preferences) and our backend stores account data.",
		"We apply reasonable safeguards; no method of transmission is 100% secure.",
	}},
	{Title: "4. Sharing", Items: []string{
		"We do not sell your personal information. We may share minimal data with service providers to operate the app.",
	}},
	{Title: "5. Your Choices", Items: []string{
		"You can access or delete your data, and log out to clear local app storage.",
		"For privacy questions, contact: support@neurocare.com",
	}},
}

// telURI keeps only the dialable characters of a phone number.
func telURI(number string) string {
	var b strings.Builder
	for _, r := range number {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
		// Stop at the first annotation, e.g. "112 (Police ...)".
		if r == '(' {
			break
		}
	}
	return b.String()
}
