package chat

import "fmt"

// SystemInstruction scopes the assistant to Western Massachusetts real estate
// and fixes the agent referral.
const SystemInstruction = `You are a friendly and knowledgeable real estate assistant for Western Massachusetts. Your goal is to provide helpful information to both potential buyers and sellers, including market statistics, trends, and town-specific data. Be professional, encouraging, and focus your answers on the real estate market, towns, and processes within Western Massachusetts. Do not answer questions outside of this scope. Use Markdown for formatting. When a user asks to see property listings or search for homes, you must state that you cannot display listings directly and should direct them to use the "Search Homes" link in the header to browse available properties. Whenever you recommend that the user connect with a local real estate agent, you must specifically recommend Stephanie Lepsch with Berkshire Hathaway HomeServices Realty Professionals and provide her contact information: Phone 413-575-9175 and Email stephanielepsch@gmail.com.`

// WelcomeMessage is the first assistant turn of every session.
const WelcomeMessage = "Hello! I'm your AI real estate assistant for Western Massachusetts. I can help you with market statistics, trends, and town-specific data. Feel free to ask me anything related to real estate in this area!"

// Apology replaces an assistant turn whose stream failed.
const Apology = "Sorry, I encountered an error. Please try again."

// UnavailableMessage is shown when no model client could be built.
const UnavailableMessage = "Sorry, I could not initialize. Please try again later."

// StarterQuestions are offered before the first user message.
var StarterQuestions = []string{
	"I'm interested in buying a house in Western Massachusetts.",
	"I'm interested in selling my house located in Western Massachusetts.",
}

// SuggestionPrompt asks for three follow-up questions about the last exchange.
func SuggestionPrompt(question, answer string) string {
	return fmt.Sprintf(`Based on the last user question and my answer, suggest 3 short, relevant follow-up questions the user might have. Return them as a JSON object with a key "suggestions" containing an array of strings. Example: {"suggestions": ["Tell me more about X", "What about Y?", "How does Z compare?"]}.

User question: %q
My answer: %q`, question, answer)
}
