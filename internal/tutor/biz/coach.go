package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/tutor-x/pkg/utils/json"
)

// 各教学场景的生成温度。
const (
	socraticTemperature   = 0.8
	vivaTemperature       = 0.6
	translateTemperature  = 0.7
	rubricTemperature     = 0.4
	scheduleTemperature   = 0.6
	curriculumTemperature = 0.5
)

// CoachService 提供苏格拉底辅导、口试、翻译、评分等教学能力。
type CoachService struct {
	chat *ChatService
}

// NewCoachService 创建教学服务。
func NewCoachService(chat *ChatService) *CoachService {
	return &CoachService{chat: chat}
}

// CourseContext 当前课程上下文，用于定制苏格拉底式提问。
type CourseContext struct {
	Subject          string   `json:"subject"`
	CurrentTopic     string   `json:"currentTopic"`
	Module           string   `json:"module"`
	Topics           []string `json:"topics"`
	IsCustomCourse   bool     `json:"isCustomCourse"`
	CourseDifficulty string   `json:"courseDifficulty"`
}

func (c *CourseContext) applyDefaults() {
	if c.Subject == "" {
		c.Subject = "General Programming"
	}
	if c.CurrentTopic == "" {
		c.CurrentTopic = "Fundamentals"
	}
	if c.CourseDifficulty == "" {
		c.CourseDifficulty = "intermediate"
	}
}

// SocraticResult 苏格拉底辅导结果。
type SocraticResult struct {
	Guidance string
	Model    string
	Usage    any
}

// Socratic 用苏格拉底式提问引导学生，不直接给出答案。
// 会话按学生维度保留，同一学生的连续提问共享上下文。
func (s *CoachService) Socratic(ctx context.Context, question, studentID string, course CourseContext) (*SocraticResult, error) {
	course.applyDefaults()

	topicsText := "General topics"
	if len(course.Topics) > 0 {
		topicsText = strings.Join(course.Topics, ", ")
	}
	customNote := "This is a predefined course"
	if course.IsCustomCourse {
		customNote = "This is a custom course created by the student"
	}

	systemPrompt := fmt.Sprintf(`You are an expert educational AI specializing in %[1]s that uses Socratic teaching methods.

COURSE CONTEXT:
- Subject: %[1]s
- Current Module: %[2]s
- Current Focus: %[3]s
- Course Topics: %[4]s
- Difficulty Level: %[5]s
- Course Type: %[6]s
- Teaching Method: Socratic questioning (guide discovery, never give answers)

STRICT RULES:
1. NEVER give the full solution or answer
2. NEVER write complete code or direct solutions
3. NEVER solve the problem directly
4. Always relate responses to the %[1]s course context
5. Reference %[3]s concepts when relevant
6. Tailor difficulty to the %[5]s level
7. Consider the specific topics: %[4]s

INSTEAD:
1. Ask 2-3 leading questions that guide discovery in %[1]s
2. Provide conceptual hints specific to %[1]s (not implementation)
3. Suggest what to think about related to %[3]s
4. Use analogies that make sense for %[1]s learners at %[5]s level
5. Connect concepts to broader %[1]s principles from this course
6. Reference other course topics (%[4]s) when creating connections

FORMAT YOUR RESPONSE:
- Use short paragraphs (2-3 sentences max)
- Add blank lines between sections
- Use bullet points with * for questions
- Use **bold** for key %[1]s concepts
- Keep responses organized and easy to read
- When appropriate, mention how this relates to %[3]s or other course topics

COURSE-SPECIFIC EXAMPLES:
For Python: "What happens when you iterate over a list? How does Python handle memory? Think about what we learned about data structures..."
For Data Science: "What patterns do you see in the data distribution? How might outliers affect your analysis? Consider the statistical methods we covered..."
For IoT: "What's the relationship between sensor sampling rate and power consumption? How does this connect to the ESP32 concepts we're studying?"

Always respond as a %[1]s expert who guides discovery through strategic questioning, never by giving direct answers. Remember you're teaching %[3]s as part of the broader %[2]s module.`,
		course.Subject, course.Module, course.CurrentTopic, topicsText, course.CourseDifficulty, customNote)

	result, err := s.chat.Complete(ctx, &CompleteRequest{
		SessionID:    studentID,
		SystemPrompt: systemPrompt,
		UserPrompt:   question,
		Temperature:  socraticTemperature,
	})
	if err != nil {
		return nil, err
	}

	return &SocraticResult{
		Guidance: result.Content,
		Model:    result.Model,
		Usage:    result.TokenUsage,
	}, nil
}

// VivaAssessment 口试评估结果。
type VivaAssessment struct {
	RequiresViva bool     `json:"requiresViva"`
	Questions    []string `json:"questions"`
	Complexity   string   `json:"complexity"`
}

// Viva 针对代码提交生成三道口头答辩问题。
func (s *CoachService) Viva(ctx context.Context, submission string) (*VivaAssessment, error) {
	prompt := fmt.Sprintf(`Analyze this student's code submission and create oral defense questions:

Submission: %s

Generate 3 targeted questions that test understanding (not memorization):
1. One about the approach/algorithm choice
2. One about implementation details
3. One about optimization or edge cases

Return as JSON with this schema:
{
  "requiresViva": true,
  "questions": ["question 1", "question 2", "question 3"],
  "complexity": "beginner|intermediate|advanced"
}`, submission)

	schema := map[string]any{
		"requiresViva": "boolean",
		"questions":    []string{"string"},
		"complexity":   "string",
	}

	var assessment VivaAssessment
	if _, err := s.chat.CompleteStructured(ctx, &CompleteRequest{
		SystemPrompt: "You are an expert code reviewer generating oral defense questions.",
		UserPrompt:   prompt,
		Temperature:  vivaTemperature,
	}, schema, &assessment); err != nil {
		return nil, err
	}

	return &assessment, nil
}

// languageNames 支持的目标语言。
var languageNames = map[string]string{
	"en": "English",
	"ta": "Tamil",
	"hi": "Hindi",
	"te": "Telugu",
	"ml": "Malayalam",
}

// culturalMetaphors 按语言提供的本土化技术类比。
var culturalMetaphors = map[string]map[string]string{
	"ta": {
		"database":  "கிராம பதிவேடு (village registry)",
		"api":       "அஞ்சல் சேவை (postal service)",
		"cache":     "உள்ளூர் கடை சரக்கு (local shop inventory)",
		"mapreduce": "சந்தை வர்த்தக மாதிரி (market trading pattern)",
	},
	"hi": {
		"database":  "गाँव का रजिस्टर (village register)",
		"api":       "डाक सेवा (postal service)",
		"cache":     "स्थानीय दुकान स्टॉक (local shop stock)",
		"mapreduce": "बाजार व्यापार पैटर्न (market trade pattern)",
	},
	"te": {
		"database":  "గ్రామ రిజిస్టర్ (village register)",
		"api":       "తపాలా సేవ (postal service)",
		"cache":     "స్థానిక దుకాణం నిల్వ (local shop stock)",
		"mapreduce": "మార్కెట్ వాణిజ్య నమూనా (market trade pattern)",
	},
	"ml": {
		"database":  "ഗ്രാമ രജിസ്റ്റർ (village register)",
		"api":       "തപാൽ സേവനം (postal service)",
		"cache":     "പ്രാദേശിക കട സ്റ്റോക്ക് (local shop stock)",
		"mapreduce": "വിപണി വ്യാപാര മാതൃക (market trade pattern)",
	},
}

// fullTextThreshold 超过该单词数按整段翻译处理，否则按概念讲解处理。
const fullTextThreshold = 10

func marshalMetaphors(metaphors map[string]string) (string, error) {
	data, err := json.Marshal(metaphors)
	if err != nil {
		return "", fmt.Errorf("failed to encode metaphors: %w", err)
	}
	return string(data), nil
}

// TranslationResult 概念翻译结果。
type TranslationResult struct {
	Translation    string
	TargetLanguage string
	Model          string
}

// Translate 将技术概念或整段教学内容翻译为目标语言。
// culturalContext 为 true 时注入该语言的文化类比。
func (s *CoachService) Translate(ctx context.Context, concept, targetLanguage string, culturalContext bool) (*TranslationResult, error) {
	langName, ok := languageNames[targetLanguage]
	if !ok {
		langName = "English"
	}

	metaphorContext := ""
	if metaphors, ok := culturalMetaphors[targetLanguage]; ok && culturalContext {
		pairs, err := marshalMetaphors(metaphors)
		if err != nil {
			return nil, err
		}
		metaphorContext = "Use these cultural metaphors: " + pairs
	}

	var prompt string
	if len(strings.Fields(concept)) > fullTextThreshold {
		prompt = fmt.Sprintf(`Translate this educational content to %[1]s while preserving the meaning and educational value:

Original Text:
%[2]s

Target Language: %[1]s
%[3]s

TRANSLATION GUIDELINES:
1. Maintain the educational and pedagogical tone
2. Keep technical terms accurate
3. Use natural, conversational %[1]s
4. Preserve formatting (paragraphs, bullets, emphasis)
5. For Tamil/Hindi: Use cultural analogies where appropriate
6. Keep the same structure and organization

Provide a natural, fluent translation that sounds like it was originally written in %[1]s.`, langName, concept, metaphorContext)
	} else {
		prompt = fmt.Sprintf(`Translate and explain this technical concept in %[1]s:

Concept: %[2]s
Target Language: %[1]s
%[3]s

FORMAT YOUR RESPONSE WITH CLEAR STRUCTURE:
- Use short paragraphs (2-3 sentences max)
- Add blank lines between sections
- Use bullet points with * for lists
- Use **bold** for key terms
- Keep it organized and scannable

Provide:
1. **Concept Overview**: Direct cultural translation (not literal word-for-word)
2. **Cultural Analogy**: Use familiar analogies from the target culture
3. **Technical Details**: Maintain technical accuracy
4. **Regional Example**: Include a real-world scenario

Focus on IDEAS and CONCEPTS, not just words.`, langName, concept, metaphorContext)
	}

	systemPrompt := fmt.Sprintf("You are an expert in multilingual education for %s speakers. "+
		"IMPORTANT: Output native script characters directly, NOT Unicode escape sequences.", targetLanguage)

	result, err := s.chat.Complete(ctx, &CompleteRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   prompt,
		Temperature:  translateTemperature,
	})
	if err != nil {
		return nil, err
	}

	return &TranslationResult{
		Translation:    result.Content,
		TargetLanguage: targetLanguage,
		Model:          result.Model,
	}, nil
}

// 评分模式。
const (
	RubricModeAcademic = "academic"
	RubricModeIndustry = "industry"
)

const academicRubric = `
Academic Rubrics:
- Correctness (40%): Functional accuracy and error-free execution
- Theory Understanding (25%): Understanding of underlying concepts
- Documentation (15%): Code comments and explanation quality
- Style (10%): Coding conventions and readability
- Testing (10%): Test coverage and edge cases`

const industryRubric = `
Industry Rubrics (AMD Standards):
- Performance (30%): Execution efficiency and optimization
- Scalability (25%): Ability to handle growth and load
- Maintainability (20%): Code quality and future extensibility
- Security (15%): Vulnerability prevention and best practices
- Production Readiness (10%): Deployment readiness and robustness`

// EvaluationResult 评分结果。
type EvaluationResult struct {
	Evaluation string
	Mode       string
	Model      string
}

// Evaluate 按学术或工业标准对提交内容做量表评分。
func (s *CoachService) Evaluate(ctx context.Context, submission, mode string) (*EvaluationResult, error) {
	if mode != RubricModeIndustry {
		mode = RubricModeAcademic
	}

	criteria := academicRubric
	if mode == RubricModeIndustry {
		criteria = industryRubric
	}

	prompt := fmt.Sprintf(`Evaluate this submission using %s standards:

Submission: %s

%s

Provide detailed feedback with:
1. Score for each criterion (0-100)
2. Overall weighted score
3. Specific strengths and areas for improvement
4. Actionable recommendations

Return as structured evaluation.`, mode, submission, criteria)

	result, err := s.chat.Complete(ctx, &CompleteRequest{
		SystemPrompt: fmt.Sprintf("You are an expert %s evaluator providing detailed rubric-based feedback.", mode),
		UserPrompt:   prompt,
		Temperature:  rubricTemperature,
	})
	if err != nil {
		return nil, err
	}

	return &EvaluationResult{
		Evaluation: result.Content,
		Mode:       mode,
		Model:      result.Model,
	}, nil
}

// ReviewPlan 每日复习计划。
type ReviewPlan struct {
	HighPriority        []string `json:"highPriority"`
	MediumPriority      []string `json:"mediumPriority"`
	ResearchSuggestions []string `json:"researchSuggestions"`
	MotivationalMessage string   `json:"motivationalMessage"`
	StreakDays          int      `json:"streakDays"`
}

// DailyReview 基于间隔重复原则生成个性化的每日复习计划。
func (s *CoachService) DailyReview(ctx context.Context, studentID string) (*ReviewPlan, error) {
	prompt := fmt.Sprintf(`Generate a personalized daily learning review for student %s:

Create a spaced repetition schedule with:
1. High priority topics (due today)
2. Medium priority topics (due soon)
3. Research suggestions for deeper learning
4. Motivational message

Focus on computer science, data structures, algorithms, and system design.

Return as JSON:
{
  "highPriority": ["topic1", "topic2"],
  "mediumPriority": ["topic1", "topic2"],
  "researchSuggestions": ["suggestion1", "suggestion2"],
  "motivationalMessage": "encouraging message",
  "streakDays": number
}`, studentID)

	schema := map[string]any{
		"highPriority":        []string{"string"},
		"mediumPriority":      []string{"string"},
		"researchSuggestions": []string{"string"},
		"motivationalMessage": "string",
		"streakDays":          "number",
	}

	var plan ReviewPlan
	if _, err := s.chat.CompleteStructured(ctx, &CompleteRequest{
		SystemPrompt: "You are an expert learning scheduler using spaced repetition principles.",
		UserPrompt:   prompt,
		Temperature:  scheduleTemperature,
	}, schema, &plan); err != nil {
		return nil, err
	}

	return &plan, nil
}

// CurriculumModule 课程大纲中的一个模块。
type CurriculumModule struct {
	ModuleTitle   string   `json:"moduleTitle"`
	Topics        []string `json:"topics"`
	EstimatedTime string   `json:"estimatedTime"`
}

// Curriculum 生成的课程大纲。
type Curriculum struct {
	Modules     []CurriculumModule `json:"modules"`
	Description string             `json:"description"`
	TotalTime   string             `json:"totalTime"`
	Difficulty  string             `json:"difficulty"`
}

// GenerateCurriculum 根据课程标题和学习目标生成 4-6 个模块的大纲。
func (s *CoachService) GenerateCurriculum(ctx context.Context, title, objective string) (*Curriculum, error) {
	if title == "" {
		return nil, fmt.Errorf("course title is required")
	}
	if objective == "" {
		objective = "Master the fundamentals and practical applications"
	}

	prompt := fmt.Sprintf(`Create a structured learning curriculum for the following course:

Course Title: %s
Learning Objective: %s

Generate a well-organized curriculum with 4-6 modules. For each module, include:
1. A clear, concise module title
2. 3-5 specific topics/subtopics to cover
3. Estimated time to complete (in hours, like "2h" or "3h")
4. Logical ordering from foundational to advanced

IMPORTANT: Return ONLY the JSON object below, no other text:
{
  "modules": [
    {
      "moduleTitle": "Module name here",
      "topics": ["topic1", "topic2", "topic3"],
      "estimatedTime": "2h"
    }
  ],
  "description": "A 1-2 sentence course description",
  "totalTime": "12h",
  "difficulty": "beginner"
}`, title, objective)

	schema := map[string]any{
		"modules": []map[string]any{{
			"moduleTitle":   "string",
			"topics":        []string{"string"},
			"estimatedTime": "string",
		}},
		"description": "string",
		"totalTime":   "string",
		"difficulty":  "string",
	}

	var curriculum Curriculum
	if _, err := s.chat.CompleteStructured(ctx, &CompleteRequest{
		SystemPrompt: "You are an expert curriculum designer. Respond with ONLY valid JSON, no markdown formatting, no code blocks, no explanations.",
		UserPrompt:   prompt,
		Temperature:  curriculumTemperature,
	}, schema, &curriculum); err != nil {
		return nil, err
	}

	return &curriculum, nil
}
