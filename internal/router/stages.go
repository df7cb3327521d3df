package router

import (
	"github.com/edufuture/edubot/internal/course"
	"github.com/edufuture/edubot/internal/faq"
)

// FAQStage answers messages containing a known FAQ question
type FAQStage struct {
	repo *faq.Repository
}

// NewFAQStage wraps a FAQ repository as a lookup stage
func NewFAQStage(repo *faq.Repository) *FAQStage {
	return &FAQStage{repo: repo}
}

// Name implements Stage
func (s *FAQStage) Name() string { return RouteFAQ }

// Answer implements Stage
func (s *FAQStage) Answer(message string) (string, bool) {
	return s.repo.FindAnswer(message)
}

// CourseStage answers course catalog queries
type CourseStage struct {
	classifier *course.Classifier
}

// NewCourseStage wraps a course classifier as a lookup stage
func NewCourseStage(classifier *course.Classifier) *CourseStage {
	return &CourseStage{classifier: classifier}
}

// Name implements Stage
func (s *CourseStage) Name() string { return RouteCourse }

// Answer implements Stage
func (s *CourseStage) Answer(message string) (string, bool) {
	return s.classifier.ClassifyAndAnswer(message)
}
