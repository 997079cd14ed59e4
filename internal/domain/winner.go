package domain

// WinnerOf selects the winning submission: the correct answer with the
// earliest SubmittedAt (first-correct-wins). Input order is irrelevant; ties
// on the exact same instant break by smaller ID so the result is stable.
// Returns false if no correct submission exists. Only meaningful once the
// question has ended, but the function itself is pure and re-derivable at any
// time from the full submission set.
func WinnerOf(submissions []Submission) (Submission, bool) {
	var winner Submission
	found := false
	for _, s := range submissions {
		if !s.IsCorrect {
			continue
		}
		if !found || s.SubmittedAt.Before(winner.SubmittedAt) ||
			(s.SubmittedAt.Equal(winner.SubmittedAt) && s.ID < winner.ID) {
			winner = s
			found = true
		}
	}
	return winner, found
}
