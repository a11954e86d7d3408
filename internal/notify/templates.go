package notify

import (
	"fmt"
	"strings"
)

// Template names double as the metric label for each mail kind.
const (
	TemplateWelcome           = "welcome"
	TemplateLoginAlert        = "login_alert"
	TemplateResetCode         = "reset_code"
	TemplateResetConfirmed    = "reset_confirmed"
	TemplateBooked            = "appointment_booked"
	TemplateCancelledByUser   = "appointment_cancelled_by_user"
	TemplateCancelledByDoctor = "appointment_cancelled_by_doctor"
	TemplateCompleted         = "appointment_completed"
)

func welcomeEmail(name, email string) EmailMessage {
	html := fmt.Sprintf(`Dear %s,<br><br>
Welcome to EasyConsult! We're excited to have you on board.<br><br>
Your account has been successfully created, and you can now access all our services. To get started, simply log in to your account and explore the available features.<br><br>
Please add your phone number and date of birth in your profile information.<br><br>
Thank you for choosing EasyConsult. We look forward to supporting your health and wellness journey!<br><br>
Best regards,<br>
EasyConsult`, name)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Welcome to EasyConsult!",
		Body:    stripTags(html),
		HTML:    html,
	}
}

func loginAlertEmail(name, email string) EmailMessage {
	html := fmt.Sprintf(`Dear %s,<br><br>
We are pleased to inform you that you have successfully logged into your account.<br><br>
If this was you, no further action is needed. If you did not initiate this login, please secure your account immediately by changing your password and contacting support.<br><br>
For any questions or assistance, feel free to reach out to our support team.<br><br>
Thank you for using EasyConsult.<br><br>
Best regards,<br>
EasyConsult`, name)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Successful Login to Your Account",
		Body:    stripTags(html),
		HTML:    html,
	}
}

func resetCodeEmail(name, email, code string) EmailMessage {
	html := fmt.Sprintf(`Dear %s,<br><br>
You have requested to reset your password. Please use the following OTP to proceed with the reset:<br><br>
<strong>OTP: %s</strong><br><br>
This OTP will expire in 10 minutes.<br><br>
If you did not request this, please ignore this message.<br><br>
Best regards,<br>
EasyConsult`, name, code)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Your OTP for Password Reset",
		Body:    stripTags(html),
		HTML:    html,
	}
}

func resetConfirmedEmail(name, email string) EmailMessage {
	html := fmt.Sprintf(`Dear %s,<br><br>
We wanted to let you know that your password has been successfully reset.<br><br>
If you did not make this request or believe this to be an error, please contact our support team immediately.<br><br>
Best regards,<br>
EasyConsult`, name)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Your Password Has Been Successfully Reset",
		Body:    stripTags(html),
		HTML:    html,
	}
}

func bookedEmail(name, email, doctorName, slotDate, slotTime string) EmailMessage {
	html := fmt.Sprintf(`Dear %s,<br><br>
We are pleased to inform you that your appointment with %s has been successfully booked.<br><br>
The details of your appointment are as follows:<br>
Date: %s<br>
Time: %s<br><br>
Please ensure that you arrive on time or, if possible, a few minutes before your scheduled appointment to avoid any delays.<br><br>
Thank you for choosing our services.<br><br>
Best regards,<br>
EasyConsult`, name, doctorName, slotDate, slotTime)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Appointment Booked",
		Body:    stripTags(html),
		HTML:    html,
	}
}

func cancelledByUserEmail(name, email, doctorName string) EmailMessage {
	html := fmt.Sprintf(`Dear %s,<br><br>
We have received your request to cancel the appointment with %s. Your appointment has been successfully cancelled.<br><br>
If you wish to reschedule or need further assistance, please don't hesitate to contact us.<br><br>
Thank you for using our services.<br><br>
Best regards,<br>
EasyConsult`, name, doctorName)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Appointment Cancelled",
		Body:    stripTags(html),
		HTML:    html,
	}
}

func cancelledByDoctorEmail(name, email, doctorName, slotDate, slotTime string) EmailMessage {
	html := fmt.Sprintf(`Dear %s,<br><br>
We regret to inform you that your appointment with %s has been cancelled by the doctor.<br><br>
The details of your appointment were as follows:<br>
Date: %s<br>
Time: %s<br><br>
We apologize for the inconvenience caused. If you wish to reschedule or have any questions, please don't hesitate to contact us.<br><br>
Thank you for your understanding.<br><br>
Best regards,<br>
EasyConsult`, name, doctorName, slotDate, slotTime)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Appointment Cancelled",
		Body:    stripTags(html),
		HTML:    html,
	}
}

func completedEmail(name, email, doctorName, slotDate, slotTime string) EmailMessage {
	html := fmt.Sprintf(`Dear %s,<br><br>
We are pleased to inform you that your appointment with %s has been completed.<br><br>
The details of your appointment are as follows:<br>
Date: %s<br>
Time: %s<br><br>
Thank you for choosing our services. We hope to assist you again in the future.<br><br>
Best regards,<br>
EasyConsult`, name, doctorName, slotDate, slotTime)
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Appointment Completed",
		Body:    stripTags(html),
		HTML:    html,
	}
}

// stripTags produces the plain-text alternative from the HTML body. The
// templates only use <br> and <strong>, so a simple replace suffices.
func stripTags(html string) string {
	r := strings.NewReplacer("<br>", "\n", "<strong>", "", "</strong>", "")
	return r.Replace(html)
}
