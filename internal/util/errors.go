package util

import "errors"

var (
	ErrInvalidCategory    = errors.New("catégorie invalide")
	ErrInvalidDifficulty  = errors.New("niveau invalide")
	ErrNotEnoughQuestions = errors.New("pas assez de questions disponibles")
	ErrAttemptNotFound    = errors.New("tentative invalide")
	ErrAttemptCompleted   = errors.New("tentative déjà terminée")
	ErrCannotGoBack       = errors.New("impossible de reculer")
	ErrQuizFinished       = errors.New("toutes les questions ont été répondues")
	ErrAttemptConflict    = errors.New("tentative modifiée par une autre requête")
	ErrQuestionNotFound   = errors.New("question introuvable")
	ErrUserNotFound       = errors.New("utilisateur introuvable")
)
