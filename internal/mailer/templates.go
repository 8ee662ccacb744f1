package mailer

import (
	"fmt"

	"github.com/ttifoundation/admission-backend/internal/models"
)

const signature = `
Warm regards,<br>
<b>TTI Foundation - Admissions Team</b><br><br>
<p style="font-size:12px;color:#666;">
This is an automatically generated email. Replies to this message are not monitored.
</p>
`

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// SubmissionToHead notifies the configured head address of a new application.
func SubmissionToHead(a *models.Admission) Mail {
	return Mail{
		Subject: "New Admission Request",
		Body: fmt.Sprintf(`
Dear Sir/Madam,<br><br>
A new admission application has been submitted and requires your review.<br><br>
<b>Applicant Details:</b><br>
Name: %s<br>
Course Applied: %s<br>
<p><a href="%s" target="_blank">View Full Image</a></p>
<p>Call: <a href="tel:%s">%s</a></p>
%s`, a.Name, a.Course, orDash(a.PassportPhoto), a.Mobile, a.Mobile, signature),
	}
}

// SubmissionToApplicant confirms receipt of the application.
func SubmissionToApplicant(a *models.Admission, headEmail string) Mail {
	contact := headEmail
	if contact == "" {
		contact = "TTI Admissions"
	}
	return Mail{
		To:      a.Email,
		Subject: "Admission Submitted TTI",
		Body: fmt.Sprintf(`
Dear %s,<br><br>
Thank you for applying to the <b>TTI Foundation</b>.<br>
We are pleased to inform you that your admission application has been <b>successfully submitted</b>.<br>
Our team will review your application, and you will be notified about the next steps via email.<br><br>
Please ensure that you regularly check your email for updates regarding your application status.<br><br>
If you have any questions or need further assistance, feel free to contact us at
<a href="mailto:%s">%s</a>.<br><br>
%s`, a.Name, headEmail, contact, signature),
	}
}

// HeadAcceptedToTeacher asks a course teacher to schedule the interview.
func HeadAcceptedToTeacher(a *models.Admission, teacherName string) Mail {
	if teacherName == "" {
		teacherName = "Teacher"
	}
	return Mail{
		Subject: "Candidate Approved - Schedule Interview",
		Body: fmt.Sprintf(`
Dear %s,<br><br>
We would like to inform you that the following candidate has been approved by the Head and is ready for the interview process.<br><br>
<b>Candidate Details</b><br>
Name: %s<br>
Course: %s<br>
<p><a href="%s" target="_blank">View Full Image</a></p>
Please log in to the dashboard and schedule the interview at your convenience.<br><br>
%s`, teacherName, a.Name, a.Course, orDash(a.PassportPhoto), signature),
	}
}

// HeadRejectedToApplicant informs the applicant of a first-stage rejection.
func HeadRejectedToApplicant(a *models.Admission) Mail {
	return Mail{
		To:      a.Email,
		Subject: "Application Rejected",
		Body: fmt.Sprintf(`
<p>Dear %s,</p>
<p>Thank you for your interest in the programs offered by <b>TTI Foundation</b>.</p>
<p>After careful review of your application, we regret to inform you that your application has not been approved at this stage.</p>
<p>We appreciate the time and effort you put into submitting your application and encourage you to apply again in the future if you meet the eligibility criteria.</p>
<p>We wish you all the best in your future endeavors.</p><br>
%s`, a.Name, signature),
	}
}

// InterviewScheduledToApplicant shares the interview details.
func InterviewScheduledToApplicant(a *models.Admission) Mail {
	return Mail{
		To:      a.Email,
		Subject: "Interview Scheduled - TTI",
		Body: fmt.Sprintf(`
Dear %s,<br><br>
We are pleased to inform you that your interview has been scheduled.<br><br>
<b>Interview Details:</b><br>
Date: %s<br>
Time: %s<br>
Platform: %s<br>
Meeting Link: %s<br><br>
Please ensure that you join the interview on time.<br>
We wish you the very best.<br><br>
%s`, a.Name, orDash(a.Interview.Date), orDash(a.Interview.Time),
			orDash(a.Interview.Platform), orDash(a.Interview.Link), signature),
	}
}

// FinalSelectedToApplicant congratulates a selected candidate.
func FinalSelectedToApplicant(a *models.Admission) Mail {
	return Mail{
		To:      a.Email,
		Subject: "Congratulations - TTI",
		Body: fmt.Sprintf(`
Dear %s,<br><br>
Congratulations!<br>
We are delighted to inform you that you have been <b>successfully selected</b> after the interview process for the <b>%s</b> course at <b>TTI Foundation</b>.<br>
Further instructions regarding onboarding will be shared with you shortly.<br>
We look forward to having you with us.<br><br>
%s`, a.Name, a.Course, signature),
	}
}

// FinalRejectedToApplicant informs the applicant of the interview outcome.
func FinalRejectedToApplicant(a *models.Admission) Mail {
	return Mail{
		To:      a.Email,
		Subject: "Interview Result - TTI",
		Body: fmt.Sprintf(`
Dear %s,<br><br>
Thank you for taking the time to apply and attend the interview with <b>TTI Foundation</b>.<br>
After careful consideration, we regret to inform you that you have not been selected at this time.<br>
We truly appreciate your interest and encourage you to apply again in the future.<br>
We wish you all the best in your academic and professional journey.<br><br>
%s`, a.Name, signature),
	}
}

// PasswordReset carries the reset link. The link expires with the token.
func PasswordReset(name, email, resetLink string) Mail {
	if name == "" {
		name = "User"
	}
	return Mail{
		To:      email,
		Subject: "Reset your password - TTI Dashboard",
		Body: fmt.Sprintf(`
<p>Hello %s,</p>
<p>We received a request to reset your TTI Dashboard password.</p>
<p><a href="%s" target="_blank" rel="noopener noreferrer">Reset Password</a></p>
<p>This link expires in 30 minutes.</p>
<p>If you did not request this, please ignore this email.</p>
%s`, name, resetLink, signature),
	}
}
