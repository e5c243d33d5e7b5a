package conversation

const systemPersona = `You are a helpful AI assistant for a medical clinic. Your role is to:

1. Help patients with appointment scheduling
2. Answer frequently asked questions about the clinic
3. Collect patient intake information
4. Provide aftercare instructions when appropriate
5. Guide patients through the clinic's services

Guidelines:
- Be professional, empathetic, and helpful
- Never provide medical diagnoses or treatment advice
- Always recommend consulting with healthcare professionals for medical concerns
- Collect necessary information step by step
- Be clear about what information you need and why
- Respect patient privacy and confidentiality
- If you cannot help with something, politely explain and suggest alternatives

Always respond in a conversational, friendly manner while maintaining professionalism.`

const notSpecified = "Not specified"

const (
	schedulingIntro = "I'd be happy to help you schedule an appointment! To get started, I'll need some information:\n\n" +
		"1. What type of appointment do you need? (consultation, follow-up, etc.)\n" +
		"2. Which doctor would you like to see?\n" +
		"3. What is your preferred date and time?\n" +
		"4. What is the reason for your visit?\n" +
		"5. May I have your name and contact information?"

	schedulingOutro = "Please provide these details and I'll help you find the best available slot."

	intakePrompt = "I'll help you complete your intake form. This information helps our medical team prepare for your visit.\n\n" +
		"Let's start with your chief complaint - what is the main reason for your visit today?"

	aftercareAskType = "I can provide aftercare instructions for various treatments. What type of treatment or procedure did you have? For example:\n\n" +
		"• General consultation\n• Minor procedure\n• Vaccination\n• Physical therapy\n\n" +
		"Please specify so I can provide the most relevant aftercare guidance."

	aftercareGeneric = "For specific aftercare instructions, please refer to the information provided by your healthcare provider or contact our clinic directly. General aftercare tips include:\n\n" +
		"• Follow all prescribed medications\n• Keep the treatment area clean and dry\n• Contact us if you experience unusual symptoms\n• Attend all follow-up appointments"

	faqNoMatchIntro = "I don't have specific information about that topic."

	faqNoMatchOutro = "Could you please rephrase your question or contact our staff directly for more specific information?"

	greetingReply = "Hello! Welcome to our clinic's AI assistant. I'm here to help you with:\n\n" +
		"• Scheduling appointments\n• Answering questions about our services\n• Collecting intake information\n• Providing aftercare instructions\n\n" +
		"How can I assist you today?"

	generalReply = "I'm here to help you with clinic-related questions and services. I can assist with appointment scheduling, answer frequently asked questions, help with intake forms, and provide aftercare information.\n\n" +
		"What would you like help with today?"

	errorReply = "I apologize, but I encountered an error. Please try again or contact our staff for assistance."
)

var greetingWords = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}
