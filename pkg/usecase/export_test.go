package usecase

// ParseBirthday is exported for testing
var ParseBirthday = parseBirthday

// FailureReason is exported for testing
var FailureReason = failureReason
