package config

func NewLoggerForTest(level, format string) *Logger {
	return &Logger{level: level, format: format}
}

func NewSlackForTest(botToken, signingSecret string) *Slack {
	return &Slack{botToken: botToken, signingSecret: signingSecret}
}

func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{projectID: projectID, location: location}
}

func NewQueueForTest(backend string) *Queue {
	return &Queue{backend: backend}
}

func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

func NewAppForTest(path string) *App {
	return &App{path: path}
}
