package tools

import "fmt"

// ContentKind selects the writing style of Content.
type ContentKind string

const (
	ContentSpeech   ContentKind = "speech"
	ContentSocial   ContentKind = "social"
	ContentResponse ContentKind = "response"
	ContentAnalysis ContentKind = "analysis"
)

// ResponseMode selects the briefing produced by CrisisResponse.
type ResponseMode string

const (
	ModeCrisis        ResponseMode = "crisis"
	ModeInterview     ResponseMode = "interview"
	ModeNews          ResponseMode = "news"
	ModeTalkingPoints ResponseMode = "talking-points"
)

// ValidModes lists the response modes accepted over HTTP.
var ValidModes = map[ResponseMode]bool{
	ModeCrisis:        true,
	ModeInterview:     true,
	ModeNews:          true,
	ModeTalkingPoints: true,
}

var contentPrompts = map[ContentKind]string{
	ContentSpeech:   "Você é um assistente de redação política. Crie um discurso persuasivo e impactante, adequado para campanhas políticas. O discurso deve ter: saudação inicial, enquadramento do problema, apresentação de soluções e apelo à ação. Use linguagem clara e inspiradora.",
	ContentSocial:   "Você é um especialista em comunicação para redes sociais. Crie uma publicação curta, impactante e otimizada para engajamento. Use linguagem direta e inclua sugestões de hashtags relevantes.",
	ContentResponse: "Você é um assessor de comunicação política. Forneça uma resposta estratégica, empática mas firme, que aborde as preocupações levantadas de forma construtiva e apresente as posições políticas de forma clara.",
}

const defaultContentPrompt = "Você é um assistente de comunicação política. Ajude a criar conteúdo eficaz para campanhas políticas."

var modePrompts = map[ResponseMode]string{
	ModeCrisis: `Você é um consultor especializado em gestão de crises políticas. 
Analise a situação de crise descrita e forneça:
1. Avaliação inicial da gravidade (Alto/Médio/Baixo risco)
2. Estratégia de comunicação imediata (primeiras 24h)
3. Mensagem-chave para transmitir ao público
4. Ações concretas a tomar
5. Respostas sugeridas para perguntas difíceis
6. O que evitar dizer/fazer

Seja profissional, estratégico e forneça conselhos práticos e imediatos em português de Portugal. A resposta deve ser clara, organizada e direta.`,

	ModeInterview: `Você é um treinador de comunicação política experiente.
Com base nos tópicos da entrevista fornecidos:
1. Identifique as perguntas mais desafiadoras
2. Forneça 3-5 respostas modelo bem estruturadas
3. Dê dicas de linguagem corporal e tom
4. Sugira formas de redirecionar perguntas difíceis
5. Inclua argumentos convincentes e dados de suporte

As respostas devem ser naturais, convincentes e profissionais em português de Portugal. Foque em clareza e impacto.`,

	ModeNews: `Você é um estrategista de comunicação política.
Analise a notícia fornecida e crie:
1. Resumo objetivo do que está a ser noticiado
2. Análise do impacto potencial (positivo/negativo/neutro)
3. Declaração oficial sugerida (200-300 palavras)
4. Pontos-chave para reforçar nas redes sociais
5. FAQ - perguntas prováveis e respostas sugeridas
6. Estratégia de follow-up

Seja equilibrado, transparente e estratégico. Use português de Portugal formal e profissional.`,

	ModeTalkingPoints: `Você é um especialista em comunicação política estratégica.
Crie talking points eficazes sobre o tema fornecido:
1. 5-7 pontos-chave bem estruturados e memoráveis
2. Estatísticas ou factos de apoio para cada ponto
3. Frases de impacto e citações prontas a usar
4. Respostas a contra-argumentos comuns
5. Call-to-action claro

Os talking points devem ser concisos, impactantes e fáceis de comunicar em português de Portugal. Foque em mensagens que ressoem com o público.`,
}

const defaultModePrompt = "Forneça uma resposta estratégica e profissional em português de Portugal."

// notSpecified fills optional prompt fields the caller left blank.
const notSpecified = "Não especificado"

func contentPrompt(kind ContentKind, request string) string {
	system, ok := contentPrompts[kind]
	if !ok {
		system = defaultContentPrompt
	}
	return fmt.Sprintf("%s\n\nSolicitação do utilizador: %s", system, request)
}

func crisisPrompt(mode ResponseMode, situation string) string {
	system, ok := modePrompts[mode]
	if !ok {
		system = defaultModePrompt
	}
	return fmt.Sprintf("%s\n\nSituação: %s", system, situation)
}

func debatePrompt(topic string) string {
	return fmt.Sprintf(`Você é um consultor especializado em preparação de debates políticos. Prepare 3 pontos de debate para o seguinte tema: "%s"

Retorne APENAS um JSON válido (sem markdown) com esta estrutura:
[
  {
    "argument": "argumento principal",
    "counterArgument": "como responder a críticas",
    "keyPoints": ["ponto 1", "ponto 2", "ponto 3"]
  },
  ... (mais 2 objetos)
]

Os argumentos devem ser em português de Portugal, profissionais, persuasivos e baseados em factos. Cada ponto-chave deve ser acionável e específico.`, topic)
}

func strategyPrompt(in StrategyInput) string {
	return fmt.Sprintf(`Você é um estrategista político experiente. Crie uma estratégia de campanha detalhada e profissional para:

Nome da Campanha: %s
Objetivos: %s
Público-Alvo: %s
Orçamento: %s

Retorne APENAS um JSON válido (sem markdown) com esta estrutura:
{
  "objective": "objetivo principal claro e mensurável",
  "targetAudience": "descrição detalhada do público-alvo",
  "channels": ["canal 1", "canal 2", "canal 3", "canal 4"],
  "timeline": "cronograma sugerido",
  "budget": "distribuição orçamental sugerida",
  "keyActions": ["ação 1", "ação 2", "ação 3", "ação 4"],
  "metrics": ["métrica 1", "métrica 2", "métrica 3"]
}

A estratégia deve ser específica, acionável e adaptada ao contexto político português.`,
		in.Name, in.Goals, orNotSpecified(in.Target), orNotSpecified(in.Budget))
}

func monitorPrompt(topic, keywords string) string {
	return fmt.Sprintf(`Você é um especialista em monitorização de redes sociais políticas. Crie um relatório de monitorização para:

Tema da Campanha: %s
Palavras-chave: %s

Retorne APENAS um JSON válido (sem markdown) com esta estrutura:
{
  "overallSentiment": "descrição do sentimento geral (50-70 palavras)",
  "topHashtags": [
    {"hashtag": "#exemplo1", "sentiment": "positive", "volume": 850, "engagement": "alto"},
    {"hashtag": "#exemplo2", "sentiment": "neutral", "volume": 420, "engagement": "médio"},
    {"hashtag": "#exemplo3", "sentiment": "negative", "volume": 180, "engagement": "baixo"}
  ],
  "keyMentions": ["menção 1", "menção 2", "menção 3"],
  "recommendations": ["recomendação 1", "recomendação 2", "recomendação 3"],
  "threats": ["ameaça 1", "ameaça 2"],
  "opportunities": ["oportunidade 1", "oportunidade 2", "oportunidade 3"]
}

O relatório deve ser realista, baseado no contexto político português e incluir dados simulados mas plausíveis.`,
		topic, orNotSpecified(keywords))
}

func orNotSpecified(s string) string {
	if s == "" {
		return notSpecified
	}
	return s
}
