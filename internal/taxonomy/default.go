// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	t, err := New(defaultCategories, defaultToolTypes, defaultConcerns)
	if err != nil {
		panic(err)
	}
	return t
}

var defaultCategories = []Category{
	{
		ID: "1", Area: "General reasoning", Name: "General reasoning",
		Description: "Benchmarks measuring general cognitive and reasoning abilities (logic, math, reading comprehension, problem-solving).",
		Keywords: []string{
			"general reasoning", "reasoning", "commonsense", "logic",
			"problem solving", "critical thinking", "cognitive", "gpqa",
			"big-bench", "hellaswag", "winogrande", "arc-challenge",
			"abstract reasoning", "analogical",
		},
	},
	{
		ID: "2.1", Area: "Pedagogy", Name: "Pedagogical knowledge",
		Description: "Benchmarks measuring knowledge about teaching: instructional strategies, learning theories, curriculum design.",
		Keywords: []string{
			"pedagogical knowledge", "teaching knowledge", "instructional design",
			"curriculum design", "learning theory", "pedagogy knowledge",
			"teacher knowledge", "pck", "tpack", "educational psychology",
			"lesson planning",
		},
	},
	{
		ID: "2.2", Area: "Pedagogy", Name: "Pedagogy of generated outputs",
		Description: "Benchmarks evaluating the pedagogical quality of AI-generated explanations, hints, and instructional content.",
		Keywords: []string{
			"explanation quality", "generated explanation", "instructional text",
			"hint generation", "step-by-step explanation", "pedagogical output",
			"teaching quality", "educational generation", "worked example",
		},
	},
	{
		ID: "2.3", Area: "Pedagogy", Name: "Pedagogical interactions",
		Description: "Benchmarks evaluating interactive teaching behaviours: Socratic questioning, scaffolding, adaptive dialogue.",
		Keywords: []string{
			"tutoring", "tutor", "socratic", "scaffolding", "dialogue",
			"interactive teaching", "conversational tutor", "student interaction",
			"adaptive dialogue", "tutorchat", "tutoreval", "multi-turn education",
		},
	},
	{
		ID: "3.1", Area: "Educational content", Name: "Content knowledge",
		Description: "Benchmarks measuring mastery of subject-matter content (STEM, humanities, etc.).",
		Keywords: []string{
			"content knowledge", "subject knowledge", "mmlu", "stem",
			"math", "science", "history", "biology", "chemistry", "physics",
			"reading comprehension", "sciq", "openbookqa", "mathbench",
			"mammoth", "gsm8k", "math benchmark", "medical knowledge",
			"computer science", "humanities", "social science",
		},
	},
	{
		ID: "3.2", Area: "Educational content", Name: "Content alignment",
		Description: "Benchmarks measuring alignment of content to curricula, standards, or learning objectives.",
		Keywords: []string{
			"content alignment", "curriculum alignment", "learning objective",
			"standards alignment", "bloom taxonomy", "learning outcome",
			"course material", "syllabus", "content mapping",
		},
	},
	{
		ID: "4.1", Area: "Assessment", Name: "Scoring and grading",
		Description: "Benchmarks evaluating automated scoring, grading, and rubric application.",
		Keywords: []string{
			"scoring", "grading", "rubric", "automated essay scoring",
			"aes", "asap", "essay scoring", "short answer grading",
			"mark scheme", "assessment scoring",
		},
	},
	{
		ID: "4.2", Area: "Assessment", Name: "Feedback with reasoning",
		Description: "Benchmarks evaluating quality of feedback: explanations, reasoning traces, actionable suggestions.",
		Keywords: []string{
			"feedback", "feedback generation", "formative feedback",
			"reasoning feedback", "error analysis", "misconception",
			"diagnostic feedback", "corrective feedback", "actionable feedback",
		},
	},
	{
		ID: "5", Area: "Ethics and bias", Name: "Ethics and bias",
		Description: "Benchmarks measuring fairness, bias, safety, and ethical behaviour in educational contexts.",
		Keywords: []string{
			"bias", "fairness", "ethics", "toxicity", "safety",
			"stereotype", "discrimination", "equity", "bbq",
			"faireval", "truthfulqa", "harmful", "responsible ai",
			"cultural sensitivity",
		},
	},
	{
		ID: "6.1", Area: "Digitisation / accessibility", Name: "Multimodal capabilities",
		Description: "Benchmarks evaluating vision, audio, diagram understanding, and multimodal reasoning for education.",
		Keywords: []string{
			"multimodal", "vision", "image understanding", "diagram",
			"figure", "chart understanding", "ocr", "visual question",
			"mathvista", "mmmu", "multi-modal education", "video understanding",
			"audio", "speech",
		},
	},
	{
		ID: "6.2", Area: "Digitisation / accessibility", Name: "Multilingual capabilities",
		Description: "Benchmarks evaluating performance across languages and cross-lingual educational tasks.",
		Keywords: []string{
			"multilingual", "cross-lingual", "translation", "exams",
			"language diversity", "non-english", "low-resource language",
			"multilingual education", "polyglot",
		},
	},
}

// "its" is left out of the pal keywords: after lower-casing it matches the
// pronoun in almost every description.
var defaultToolTypes = []ToolType{
	{
		ID: "ai_tutor", Name: "AI Tutors",
		Description: "1-to-1 conversational tutoring systems (e.g. Khanmigo, Duolingo Max).",
		KeyNeeds:    []string{"2.3", "2.2", "4.2", "3.1", "1"},
		Keywords: []string{
			"tutor", "tutoring", "socratic", "dialogue", "conversational",
			"1-to-1", "one-on-one", "student interaction", "chat-based",
			"scaffolding", "hint", "explanation", "worked example",
		},
	},
	{
		ID: "pal", Name: "Personalised Adaptive Learning",
		Description: "Systems that adapt content/difficulty to individual learners (e.g. adaptive courseware, ITS).",
		KeyNeeds:    []string{"3.2", "2.1", "4.1", "4.2", "6.1", "6.2"},
		Keywords: []string{
			"adaptive", "personalised", "personalized", "adaptive learning",
			"learning path", "difficulty adaptation", "student model",
			"knowledge tracing", "learner model", "intelligent tutoring",
			"mastery", "spaced repetition",
		},
	},
	{
		ID: "teacher_support", Name: "Teacher Support Tools",
		Description: "Tools that assist teachers: lesson planning, content generation, grading, analytics.",
		KeyNeeds:    []string{"2.1", "3.1", "3.2", "4.1", "4.2", "5"},
		Keywords: []string{
			"teacher", "grading", "scoring", "rubric", "lesson plan",
			"curriculum", "content generation", "question generation",
			"assessment creation", "analytics", "learning analytics",
			"classroom", "instructor", "marking",
		},
	},
}

var defaultConcerns = []Concern{
	{
		ID: "cognitive_offloading", Name: "Cognitive Offloading & Over-reliance",
		Description: "When AI does the thinking for learners, reducing effort, bypassing productive struggle, and creating dependency.",
		Keywords: []string{
			"cognitive offloading", "offloading", "over-reliance", "overreliance",
			"over reliance", "dependency", "dependence", "reliance on ai",
			"automation bias", "complacency", "shortcut", "shortcuts",
		},
	},
	{
		ID: "productive_struggle", Name: "Productive Struggle & Scaffolding",
		Description: "The balance between helpful AI scaffolding and over-scaffolding that removes the desirable difficulty learners need to grow.",
		Keywords: []string{
			"productive struggle", "productive failure", "desirable difficulty",
			"desirable difficulties", "scaffolding", "over-scaffolding",
			"hint", "hints", "worked example", "worked examples", "struggle",
		},
	},
	{
		ID: "metacognition", Name: "Metacognition & Self-regulation",
		Description: "Whether AI tools help or hinder learners' ability to monitor their own understanding and self-regulate.",
		Keywords: []string{
			"metacognition", "metacognitive", "self-regulation", "self-regulated",
			"self-regulated learning", "self-monitoring", "self-assessment",
			"self-explanation", "reflection", "calibration",
		},
	},
	{
		ID: "critical_thinking", Name: "Critical Thinking & Higher-order Skills",
		Description: "Impact of AI on higher-order cognitive skills: analysis, evaluation, synthesis, and creative problem-solving.",
		Keywords: []string{
			"critical thinking", "higher-order", "higher order thinking",
			"problem-solving", "problem solving", "creativity", "creative thinking",
			"argumentation", "analytical thinking", "learning transfer",
			"transfer of learning", "agency", "autonomy",
		},
	},
	{
		ID: "equity_access", Name: "Equity & Access",
		Description: "Risks of AI widening existing education gaps: digital divide, language bias, cost barriers, and disparate impact.",
		Keywords: []string{
			"equity", "equitable", "digital divide", "accessibility",
			"low-resource", "low resource", "underserved", "marginalized",
			"marginalised", "language bias", "affordability", "lmic", "lmics",
			"developing countries", "global south", "rural",
		},
	},
}
