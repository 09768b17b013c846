package assistant

import (
	"context"
	"fmt"
	"strings"
)

// UserContext describes the signed-in user, if any.
type UserContext struct {
	UserID   string
	UserType string
	UserName string
}

// IsPatient reports whether the user is signed in as a patient.
func (u *UserContext) IsPatient() bool {
	return u != nil && u.UserType == "patient"
}

type rule struct {
	keywords []string
	reply    func(user *UserContext) string
}

func fixed(text string) func(*UserContext) string {
	return func(*UserContext) string { return text }
}

func patientOnly(patient, guest string) func(*UserContext) string {
	return func(user *UserContext) string {
		if user.IsPatient() {
			return patient
		}
		return guest
	}
}

// rules are evaluated in order; the first keyword hit wins.
var rules = []rule{
	{
		keywords: []string{"hello", "hi", "hey", "greetings"},
		reply: func(user *UserContext) string {
			if user != nil && user.UserName != "" {
				return fmt.Sprintf("Hello %s! How can I help you today?", user.UserName)
			}
			return "Hello! Welcome to Medilink Hospital. How can I assist you today?"
		},
	},
	{
		keywords: []string{"book", "appointment", "schedule", "doctor"},
		reply: patientOnly(
			"To book an appointment, click on 'Book Appointment' in your dashboard or <a href='/patient/book-appointment'>click here</a>. You can choose your preferred doctor, date, and time!",
			"To book an appointment, please <a href='/patient/login'>login as a patient</a> or <a href='/patient/register'>register here</a>.",
		),
	},
	{
		keywords: []string{"find doctor", "doctors", "specialist", "cardiologist", "surgeon"},
		reply:    fixed("You can view all our doctors and their specializations on the <a href='/patient/book-appointment'>Book Appointment</a> page. We have specialists in various fields including Cardiology, Neurology, Orthopedics, and more!"),
	},
	{
		keywords: []string{"cancel", "cancellation"},
		reply: patientOnly(
			"To cancel an appointment, go to <a href='/patient/appointments'>My Appointments</a> and click the 'Cancel Appointment' button next to your scheduled appointment.",
			"Please login to manage your appointments.",
		),
	},
	{
		keywords: []string{"medical record", "history", "prescription", "diagnosis"},
		reply: patientOnly(
			"You can view your complete medical history at <a href='/patient/medical-records'>My Medical Records</a>. This includes all diagnoses, prescriptions, and doctor's notes.",
			"Medical records are available after you login as a patient.",
		),
	},
	{
		keywords: []string{"forgot password", "reset password", "password"},
		reply:    fixed("You can reset your password by clicking 'Forgot Password?' on the login page, or <a href='/forgot-password'>click here</a> to reset it now."),
	},
	{
		keywords: []string{"hours", "open", "timing", "time"},
		reply:    fixed("Medilink Hospital is open 24/7 for emergencies. Regular OPD hours are 9:00 AM to 8:00 PM, Monday to Saturday. Emergency services are available round the clock!"),
	},
	{
		keywords: []string{"contact", "phone", "email", "address", "location"},
		reply:    fixed("Phone: +880-XXX-XXXXXX<br>Email: info@medilink.com<br>Address: Dhaka, Bangladesh<br>For emergencies, call our 24/7 helpline!"),
	},
	{
		keywords: []string{"help", "what can you do", "features", "how"},
		reply: fixed("I can help you with:<ul><li>Booking appointments</li><li>Finding doctors</li><li>Viewing medical records</li>" +
			"<li>Cancelling appointments</li><li>Resetting passwords</li><li>Hospital information</li></ul>Just ask me anything!"),
	},
	{
		keywords: []string{"thank", "thanks", "appreciate"},
		reply:    fixed("You're welcome! Is there anything else I can help you with?"),
	},
	{
		keywords: []string{"bye", "goodbye", "see you", "exit"},
		reply:    fixed("Goodbye! Take care and stay healthy! Feel free to chat anytime you need help."),
	},
}

// DefaultReply answers anything no rule matched.
const DefaultReply = "I'm here to help! You can ask me about:<ul><li>Booking appointments</li><li>Finding doctors</li>" +
	"<li>Medical records</li><li>Hospital hours and contact info</li></ul>What would you like to know?"

// RuleResponder answers from a fixed keyword table. Matching is by substring
// on the lower-cased message.
type RuleResponder struct{}

// Respond never fails.
func (RuleResponder) Respond(_ context.Context, message string, user *UserContext) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.reply(user), nil
			}
		}
	}
	return DefaultReply, nil
}
