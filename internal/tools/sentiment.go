package tools

import "strings"

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

var (
	positiveWords = []string{"ótimo", "excelente", "bom", "melhor", "apoio", "concordo", "gosto", "parabéns"}
	negativeWords = []string{"ruim", "péssimo", "contra", "discordo", "não gosto", "problema", "erro"}

	sentimentInsights = map[string][]string{
		SentimentPositive: {"O sentimento geral é positivo", "Boa recepção do público", "Continue com esta abordagem"},
		SentimentNegative: {"O sentimento geral é negativo", "Considere ajustar a mensagem", "Responda às preocupações levantadas"},
		SentimentNeutral:  {"O sentimento é neutro", "Pode precisar de uma mensagem mais clara", "Tente ser mais específico"},
	}
)

// SentimentResult is the outcome of a local sentiment analysis.
type SentimentResult struct {
	Overall  string   `json:"overall"`
	Score    int      `json:"score"`
	Insights []string `json:"insights"`
}

// Sentiment scores text with a keyword heuristic. The score starts at 50,
// moves 10 points per listed word found as a substring, and is clamped to
// 0..100. Above 60 is positive, below 40 negative.
func Sentiment(text string) SentimentResult {
	lower := strings.ToLower(text)
	score := 50
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score += 10
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score -= 10
		}
	}
	score = max(0, min(100, score))

	overall := SentimentNeutral
	switch {
	case score > 60:
		overall = SentimentPositive
	case score < 40:
		overall = SentimentNegative
	}
	sentimentScores.Observe(float64(score))

	insights := make([]string, len(sentimentInsights[overall]))
	copy(insights, sentimentInsights[overall])
	return SentimentResult{Overall: overall, Score: score, Insights: insights}
}
