package llm

import "fmt"

// BuildQuestionPrompt produces the prompt used to generate interview
// questions for a role.
func BuildQuestionPrompt(role string, count int) string {
	return fmt.Sprintf(`Generate %d technical interview questions for a %s position.

Requirements:
- Questions should be relevant to the %s role
- Include a mix of theoretical and practical questions
- Questions should assess technical knowledge, problem-solving, and coding skills
- Make questions clear and specific
- Avoid yes/no questions
- Keep each question concise (under 200 characters)

Return ONLY a JSON array of %d question strings. Do not include any markdown formatting or explanations.

Example format:
["Question 1 text here", "Question 2 text here", "Question 3 text here"]

Generate exactly %d questions now.`, count, role, role, count, count)
}

// BuildEvaluationPrompt produces the prompt used to score a candidate answer
// against its question and role context.
func BuildEvaluationPrompt(question, answer, role string) string {
	return fmt.Sprintf(`Evaluate this %s candidate's answer. Return ONLY valid JSON, no markdown.

Question: %s
Answer: %s

Return this exact JSON structure:
{
  "scores": {
    "correctness": 8.5,
    "completeness": 7.0,
    "quality": 9.0,
    "communication": 8.0
  },
  "feedback": "Detailed feedback here",
  "suggestions": ["suggestion 1", "suggestion 2", "suggestion 3"]
}

Scores are 0-10. Provide at least 3 suggestions. Be specific and constructive.`, role, question, answer)
}
