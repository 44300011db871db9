package openai

import "fmt"

const attributeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "company_name": {"type": ["string", "null"]},
    "position_applied": {"type": ["string", "null"]},
    "application_date": {"type": ["string", "null"]}
  },
  "required": ["company_name", "position_applied", "application_date"]
}`

const attributePromptTemplate = `You extract structured fields from job application emails.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
or markdown. Start your response with the opening brace { and end with the closing brace }.

%s

Rules:
- company_name is the hiring company, not the job board or applicant tracking system that sent the email.
- position_applied is the job title exactly as written in the email.
- application_date is the date the application was submitted, formatted YYYY-MM-DD.
- Use an empty string for any field the email does not state. Do not guess.`

const zeroShotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "job": {"type": "boolean"},
    "probability": {"type": "number", "minimum": 0, "maximum": 1}
  },
  "required": ["job", "probability"]
}`

const zeroShotPromptTemplate = `You sort emails into exactly one of two categories:

1. This email is about job applications, recruiters, hiring, interviews, resumes, or any career opportunity.
2. This email is not related to jobs or careers and is about something else.

Output ONLY valid JSON which complies with the schema given below:

%s

Set "job" to true for category 1 and false for category 2. Set "probability" to your confidence,
between 0 and 1, that the email belongs to category 1.`

func attributeSystemPrompt() string {
	return fmt.Sprintf(attributePromptTemplate, attributeSchema)
}

func zeroShotSystemPrompt() string {
	return fmt.Sprintf(zeroShotPromptTemplate, zeroShotSchema)
}
