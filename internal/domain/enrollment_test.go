package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHasCompletedLesson(t *testing.T) {
	lessonID := primitive.NewObjectID()
	e := Enrollment{CompletedLessons: []CompletedLesson{{LessonID: lessonID}}}

	assert.True(t, e.HasCompletedLesson(lessonID))
	assert.False(t, e.HasCompletedLesson(primitive.NewObjectID()))
}

func TestDistinctCompletedLessons(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	tests := []struct {
		name    string
		lessons []CompletedLesson
		want    int
	}{
		{"empty", nil, 0},
		{"distinct", []CompletedLesson{{LessonID: a}, {LessonID: b}}, 2},
		{"duplicates counted once", []CompletedLesson{{LessonID: a}, {LessonID: a}, {LessonID: b}}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := Enrollment{CompletedLessons: tc.lessons}
			assert.Equal(t, tc.want, e.DistinctCompletedLessons())
		})
	}
}
