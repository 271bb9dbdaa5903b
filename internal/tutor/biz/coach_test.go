package biz

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoach(provider *fakeChatProvider) *CoachService {
	return NewCoachService(NewChatService(provider, NewMemorySessionStore(20)))
}

func TestCoachService_Socratic(t *testing.T) {
	provider := &fakeChatProvider{response: "* What do you think happens first?"}
	coach := newTestCoach(provider)

	result, err := coach.Socratic(context.Background(), "how does quicksort work?", "student_001", CourseContext{
		Subject:          "Algorithms",
		CurrentTopic:     "Sorting",
		Module:           "Divide and Conquer",
		Topics:           []string{"quicksort", "mergesort"},
		CourseDifficulty: "advanced",
	})
	require.NoError(t, err)

	assert.Equal(t, "* What do you think happens first?", result.Guidance)
	assert.Equal(t, "test-model", result.Model)

	systemPrompt := provider.gotMessages[0].Content
	assert.Contains(t, systemPrompt, "Socratic teaching methods")
	assert.Contains(t, systemPrompt, "Subject: Algorithms")
	assert.Contains(t, systemPrompt, "Current Focus: Sorting")
	assert.Contains(t, systemPrompt, "quicksort, mergesort")
	assert.Contains(t, systemPrompt, "NEVER give the full solution")
	assert.Contains(t, systemPrompt, "This is a predefined course")

	assert.InDelta(t, 0.8, provider.gotOpts.Temperature, 1e-9)
}

func TestCoachService_SocraticDefaults(t *testing.T) {
	provider := &fakeChatProvider{response: "guidance"}
	coach := newTestCoach(provider)

	_, err := coach.Socratic(context.Background(), "help", "student_001", CourseContext{IsCustomCourse: true})
	require.NoError(t, err)

	systemPrompt := provider.gotMessages[0].Content
	assert.Contains(t, systemPrompt, "General Programming")
	assert.Contains(t, systemPrompt, "Fundamentals")
	assert.Contains(t, systemPrompt, "intermediate")
	assert.Contains(t, systemPrompt, "custom course created by the student")
}

func TestCoachService_SocraticSharesStudentSession(t *testing.T) {
	provider := &fakeChatProvider{response: "guidance"}
	coach := newTestCoach(provider)
	ctx := context.Background()

	_, err := coach.Socratic(ctx, "first question", "student_001", CourseContext{})
	require.NoError(t, err)
	_, err = coach.Socratic(ctx, "follow-up question", "student_001", CourseContext{})
	require.NoError(t, err)

	// 同一学生的第二次提问携带第一轮对话
	require.Len(t, provider.gotMessages, 4)
	assert.Equal(t, "first question", provider.gotMessages[1].Content)
}

func TestCoachService_Viva(t *testing.T) {
	provider := &fakeChatProvider{response: `{"requiresViva": true, "questions": ["q1", "q2", "q3"], "complexity": "intermediate"}`}
	coach := newTestCoach(provider)

	assessment, err := coach.Viva(context.Background(), "def add(a, b): return a + b")
	require.NoError(t, err)

	assert.True(t, assessment.RequiresViva)
	assert.Len(t, assessment.Questions, 3)
	assert.Equal(t, "intermediate", assessment.Complexity)

	userPrompt := provider.gotMessages[1].Content
	assert.Contains(t, userPrompt, "oral defense questions")
	assert.Contains(t, userPrompt, "def add(a, b)")
	assert.Contains(t, provider.gotMessages[0].Content, "expert code reviewer")
}

func TestCoachService_TranslateConcept(t *testing.T) {
	provider := &fakeChatProvider{response: "**கருத்து மேலோட்டம்**: ..."}
	coach := newTestCoach(provider)

	result, err := coach.Translate(context.Background(), "database indexing", "ta", true)
	require.NoError(t, err)

	assert.Equal(t, "ta", result.TargetLanguage)
	assert.NotEmpty(t, result.Translation)

	userPrompt := provider.gotMessages[1].Content
	// 短概念走讲解模板并注入文化类比
	assert.Contains(t, userPrompt, "Translate and explain this technical concept in Tamil")
	assert.Contains(t, userPrompt, "**Cultural Analogy**")
	assert.Contains(t, userPrompt, "கிராம பதிவேடு")
	assert.Contains(t, provider.gotMessages[0].Content, "NOT Unicode escape sequences")
}

func TestCoachService_TranslateFullText(t *testing.T) {
	provider := &fakeChatProvider{response: "अनुवादित पाठ"}
	coach := newTestCoach(provider)

	longText := strings.Repeat("a binary tree stores sorted data ", 3)
	_, err := coach.Translate(context.Background(), longText, "hi", false)
	require.NoError(t, err)

	userPrompt := provider.gotMessages[1].Content
	// 长文本走整段翻译模板，未开启文化上下文时不注入类比
	assert.Contains(t, userPrompt, "Translate this educational content to Hindi")
	assert.NotContains(t, userPrompt, "cultural metaphors")
}

func TestCoachService_TranslateUnknownLanguage(t *testing.T) {
	provider := &fakeChatProvider{response: "translated"}
	coach := newTestCoach(provider)

	_, err := coach.Translate(context.Background(), "recursion", "fr", true)
	require.NoError(t, err)

	assert.Contains(t, provider.gotMessages[1].Content, "English")
}

func TestCoachService_Evaluate(t *testing.T) {
	tests := []struct {
		name         string
		mode         string
		wantMode     string
		wantCriteria string
	}{
		{
			name:         "学术模式",
			mode:         "academic",
			wantMode:     RubricModeAcademic,
			wantCriteria: "Correctness (40%)",
		},
		{
			name:         "工业模式",
			mode:         "industry",
			wantMode:     RubricModeIndustry,
			wantCriteria: "Performance (30%)",
		},
		{
			name:         "未知模式回退到学术",
			mode:         "whatever",
			wantMode:     RubricModeAcademic,
			wantCriteria: "Theory Understanding (25%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeChatProvider{response: "detailed feedback"}
			coach := newTestCoach(provider)

			result, err := coach.Evaluate(context.Background(), "some code", tt.mode)
			require.NoError(t, err)

			assert.Equal(t, tt.wantMode, result.Mode)
			assert.Equal(t, "detailed feedback", result.Evaluation)
			assert.Contains(t, provider.gotMessages[1].Content, tt.wantCriteria)
			assert.InDelta(t, 0.4, provider.gotOpts.Temperature, 1e-9)
		})
	}
}

func TestCoachService_DailyReview(t *testing.T) {
	provider := &fakeChatProvider{response: `{
		"highPriority": ["hash tables"],
		"mediumPriority": ["graphs", "heaps"],
		"researchSuggestions": ["consistent hashing"],
		"motivationalMessage": "keep going",
		"streakDays": 7
	}`}
	coach := newTestCoach(provider)

	plan, err := coach.DailyReview(context.Background(), "student_001")
	require.NoError(t, err)

	assert.Equal(t, []string{"hash tables"}, plan.HighPriority)
	assert.Len(t, plan.MediumPriority, 2)
	assert.Equal(t, 7, plan.StreakDays)
	assert.Contains(t, provider.gotMessages[1].Content, "student_001")
	assert.Contains(t, provider.gotMessages[0].Content, "spaced repetition")
}

func TestCoachService_GenerateCurriculum(t *testing.T) {
	provider := &fakeChatProvider{response: `{
		"modules": [
			{"moduleTitle": "Basics", "topics": ["t1", "t2"], "estimatedTime": "2h"},
			{"moduleTitle": "Advanced", "topics": ["t3"], "estimatedTime": "3h"}
		],
		"description": "A course.",
		"totalTime": "5h",
		"difficulty": "beginner"
	}`}
	coach := newTestCoach(provider)

	curriculum, err := coach.GenerateCurriculum(context.Background(), "Intro to Go", "")
	require.NoError(t, err)

	require.Len(t, curriculum.Modules, 2)
	assert.Equal(t, "Basics", curriculum.Modules[0].ModuleTitle)
	assert.Equal(t, "5h", curriculum.TotalTime)

	// 未提供学习目标时使用默认目标
	assert.Contains(t, provider.gotMessages[1].Content, "Master the fundamentals and practical applications")
}

func TestCoachService_GenerateCurriculumRequiresTitle(t *testing.T) {
	coach := newTestCoach(&fakeChatProvider{})

	_, err := coach.GenerateCurriculum(context.Background(), "", "learn things")
	assert.Error(t, err)
}
