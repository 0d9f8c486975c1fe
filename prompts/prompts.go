package prompts

// LLMPrompts holds templates for interacting with Large Language Models.
const (
	// PerformanceReviewPrompt asks the model to evaluate one employee's sprint.
	// It is a text/template rendered with a ReviewData value.
	PerformanceReviewPrompt = `
Evaluate the performance of the employee based on the following data on sprint {{.SprintID}}:
Tasks Completed on this sprint (2 weeks): {{.Tasks}}
1 on 1 Notes: {{.MeetingNotes}}
Provide a summary of performance_summary, high_lighting, strengths_areas_for_improvement and reason for can_be_laid_off or not.
in the following JSON format:
{
    "sprint_id": "{{.SprintID}}",
    "performance_summary": "<summary>",
    "high_lighting": "<highlighting>",
    "strengths_areas_for_improvement": "<strengths_areas_for_improvement>",
    "can_be_laid_off": "<reason>"
}
Each of performance_summary, high_lighting, strengths_areas_for_improvement and can_be_laid_off can be a string or a list of strings.

{{.FormatInstructions}}
`
)
