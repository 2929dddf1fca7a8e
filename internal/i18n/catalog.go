// Package i18n holds the localized system messages the assistant injects into
// conversations: the seeded welcome, live-chat connection notices and the
// escalation confirmations. Languages without a translation fall back to
// English via x/text language matching.
package i18n

import "golang.org/x/text/language"

type Key string

const (
	KeyWelcome           Key = "welcome"
	KeyConnecting        Key = "connecting"
	KeyConnected         Key = "connected"
	KeyClosing           Key = "closing"
	KeyRetry             Key = "retry"
	KeyEscalatedHuman    Key = "escalated_human"
	KeyEscalatedFrustr   Key = "escalated_frustration"
	KeyEscalatedRepeated Key = "escalated_repeated"
	KeyEscalatedFeedback Key = "escalated_feedback"
	KeyEscalatedDefault  Key = "escalated_default"
)

var supported = []language.Tag{
	language.English, // first = fallback
	language.Spanish,
	language.French,
	language.German,
	language.Chinese,
}

var matcher = language.NewMatcher(supported)

var catalog = map[string]map[Key]string{
	"en": {
		KeyWelcome:           "Hello! I'm the FAQ Assistant. I can help answer questions about our services, accounts, fees and general information. What would you like to know?",
		KeyConnecting:        "Connecting you to a live agent. Please wait a moment...",
		KeyConnected:         "Connected to live agent. You can now chat directly with our support team.",
		KeyClosing:           "The agent has ended this chat session. Thank you for contacting support.",
		KeyRetry:             "I'm experiencing technical difficulties. Please try again in a moment.",
		KeyEscalatedHuman:    "I understand you'd like to speak with a human agent. I've connected you with our support team who will assist you shortly.",
		KeyEscalatedFrustr:   "I can see this is frustrating for you. Let me connect you with a specialist who can provide better assistance.",
		KeyEscalatedRepeated: "I'm having difficulty providing the right answers. I've escalated this to our expert team for personalized help.",
		KeyEscalatedFeedback: "I couldn't find the answer to your question. I've created a support ticket and our customer service team will help you shortly.",
		KeyEscalatedDefault:  "I've escalated this to our specialist team for immediate attention. They will contact you shortly.",
	},
	"es": {
		KeyWelcome:           "¡Hola! Soy el Asistente de Preguntas Frecuentes. Puedo ayudarte con preguntas sobre nuestros servicios, cuentas, tarifas e información general. ¿Qué te gustaría saber?",
		KeyConnecting:        "Conectándote con un agente en vivo. Por favor espera un momento...",
		KeyConnected:         "Conectado con un agente en vivo. Ahora puedes chatear directamente con nuestro equipo de soporte.",
		KeyClosing:           "El agente ha finalizado esta sesión de chat. Gracias por contactar con soporte.",
		KeyRetry:             "Estoy experimentando dificultades técnicas. Por favor, inténtalo de nuevo en un momento.",
		KeyEscalatedHuman:    "Entiendo que deseas hablar con un agente humano. Te he conectado con nuestro equipo de soporte, que te atenderá en breve.",
		KeyEscalatedFrustr:   "Veo que esto te resulta frustrante. Permíteme conectarte con un especialista que pueda ayudarte mejor.",
		KeyEscalatedRepeated: "Tengo dificultades para darte las respuestas correctas. He escalado esto a nuestro equipo de expertos.",
		KeyEscalatedFeedback: "No pude encontrar la respuesta a tu pregunta. He creado un ticket de soporte y nuestro equipo te ayudará en breve.",
		KeyEscalatedDefault:  "He escalado esto a nuestro equipo de especialistas para atención inmediata. Se pondrán en contacto contigo en breve.",
	},
	"fr": {
		KeyWelcome:           "Bonjour ! Je suis l'Assistant FAQ. Je peux répondre à vos questions sur nos services, comptes, frais et informations générales. Que souhaitez-vous savoir ?",
		KeyConnecting:        "Connexion à un agent en direct. Veuillez patienter un instant...",
		KeyConnected:         "Connecté à un agent en direct. Vous pouvez maintenant discuter directement avec notre équipe d'assistance.",
		KeyClosing:           "L'agent a mis fin à cette session de chat. Merci d'avoir contacté l'assistance.",
		KeyRetry:             "Je rencontre des difficultés techniques. Veuillez réessayer dans un instant.",
		KeyEscalatedHuman:    "Je comprends que vous souhaitez parler à un agent humain. Je vous ai mis en relation avec notre équipe d'assistance.",
		KeyEscalatedFrustr:   "Je vois que c'est frustrant pour vous. Laissez-moi vous mettre en relation avec un spécialiste.",
		KeyEscalatedRepeated: "J'ai du mal à fournir les bonnes réponses. J'ai transmis votre demande à notre équipe d'experts.",
		KeyEscalatedFeedback: "Je n'ai pas trouvé la réponse à votre question. J'ai créé un ticket d'assistance et notre équipe vous aidera sous peu.",
		KeyEscalatedDefault:  "J'ai transmis votre demande à notre équipe de spécialistes pour une attention immédiate. Ils vous contacteront sous peu.",
	},
	"de": {
		KeyWelcome:           "Hallo! Ich bin der FAQ-Assistent. Ich kann Fragen zu unseren Dienstleistungen, Konten, Gebühren und allgemeinen Informationen beantworten. Was möchten Sie wissen?",
		KeyConnecting:        "Verbindung zu einem Live-Agenten. Bitte warten Sie einen Moment...",
		KeyConnected:         "Mit einem Live-Agenten verbunden. Sie können jetzt direkt mit unserem Support-Team chatten.",
		KeyClosing:           "Der Agent hat diese Chat-Sitzung beendet. Vielen Dank, dass Sie den Support kontaktiert haben.",
		KeyRetry:             "Ich habe technische Schwierigkeiten. Bitte versuchen Sie es gleich noch einmal.",
		KeyEscalatedHuman:    "Ich verstehe, dass Sie mit einem menschlichen Agenten sprechen möchten. Ich habe Sie mit unserem Support-Team verbunden.",
		KeyEscalatedFrustr:   "Ich sehe, dass das frustrierend für Sie ist. Ich verbinde Sie mit einem Spezialisten.",
		KeyEscalatedRepeated: "Ich habe Schwierigkeiten, die richtigen Antworten zu geben. Ich habe dies an unser Expertenteam weitergeleitet.",
		KeyEscalatedFeedback: "Ich konnte die Antwort auf Ihre Frage nicht finden. Ich habe ein Support-Ticket erstellt, unser Team hilft Ihnen in Kürze.",
		KeyEscalatedDefault:  "Ich habe dies zur sofortigen Bearbeitung an unser Spezialistenteam weitergeleitet. Sie werden sich in Kürze bei Ihnen melden.",
	},
	"zh": {
		KeyWelcome:           "您好！我是常见问题助手。我可以帮助您解答有关我们的服务、账户、费用和一般信息的问题。您想了解什么？",
		KeyConnecting:        "正在连接到在线客服。请稍候...",
		KeyConnected:         "已连接到在线客服。您现在可以直接与我们的支持团队聊天。",
		KeyClosing:           "客服已结束本次聊天。感谢您联系支持团队。",
		KeyRetry:             "我遇到了技术问题。请稍后再试。",
		KeyEscalatedHuman:    "我理解您想与人工客服交谈。我已为您联系我们的支持团队，他们将尽快为您服务。",
		KeyEscalatedFrustr:   "我看得出这让您感到困扰。让我为您联系一位能提供更好帮助的专家。",
		KeyEscalatedRepeated: "我难以提供正确的答案。我已将此问题升级给我们的专家团队。",
		KeyEscalatedFeedback: "我没能找到您问题的答案。我已创建支持工单，我们的客服团队将尽快帮助您。",
		KeyEscalatedDefault:  "我已将此问题升级给我们的专家团队以便立即处理。他们将尽快与您联系。",
	},
}

// Resolve maps an arbitrary BCP 47 language string onto a supported catalog
// language, defaulting to English.
func Resolve(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "en"
	}
	_, index, _ := matcher.Match(tag)
	base, _ := supported[index].Base()
	return base.String()
}

func Lookup(lang string, key Key) string {
	resolved := Resolve(lang)
	if msg, ok := catalog[resolved][key]; ok {
		return msg
	}
	return catalog["en"][key]
}

// Supported returns the catalog languages keyed by code.
func Supported() map[string]string {
	return map[string]string{
		"en": "English",
		"es": "Español",
		"fr": "Français",
		"de": "Deutsch",
		"zh": "中文",
	}
}
