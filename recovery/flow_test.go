package recovery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kmercer/storegate/account"
	"github.com/kmercer/storegate/recovery"
	"github.com/kmercer/storegate/storage/memory"
)

func seedAccount(t *testing.T, repo *memory.Store, email string, active bool, answers ...string) *account.Account {
	t.Helper()
	passHash, err := account.HashPassword("original-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	acct := &account.Account{Email: email, PasswordHash: passHash, Active: active}
	if err := repo.CreateAccount(context.Background(), acct); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	for i, answer := range answers {
		hash, err := account.HashAnswer(answer)
		if err != nil {
			t.Fatalf("HashAnswer: %v", err)
		}
		q := &account.SecurityQuestion{
			AccountID:  acct.ID,
			Text:       []string{"First pet?", "Mother's maiden name?", "First car?"}[i%3],
			AnswerHash: hash,
		}
		if err := repo.AddSecurityQuestion(context.Background(), q); err != nil {
			t.Fatalf("AddSecurityQuestion: %v", err)
		}
	}
	return acct
}

func TestSubmitEmailTransitionsToVerify(t *testing.T) {
	repo := memory.NewRepository()
	acct := seedAccount(t, repo, "a@x.com", true, "blue", "smith", "corolla")
	flow := recovery.NewFlow(repo)

	var sess recovery.Session
	if err := flow.SubmitEmail(context.Background(), &sess, "a@x.com", "shop.php?a=1"); err != nil {
		t.Fatalf("SubmitEmail: %v", err)
	}
	if sess.Stage != recovery.StageVerify {
		t.Fatalf("stage = %q, want %q", sess.Stage, recovery.StageVerify)
	}
	if sess.AccountID != acct.ID {
		t.Errorf("account id = %d, want %d", sess.AccountID, acct.ID)
	}
	if sess.Email != "a@x.com" {
		t.Errorf("email = %q", sess.Email)
	}
	if sess.Redirect != "shop.php?a=1" {
		t.Errorf("redirect = %q", sess.Redirect)
	}
	// Exactly the first two questions, in insertion order.
	if len(sess.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(sess.Questions))
	}
	if sess.Questions[0].Text != "First pet?" || sess.Questions[1].Text != "Mother's maiden name?" {
		t.Errorf("questions out of order: %q, %q", sess.Questions[0].Text, sess.Questions[1].Text)
	}
	if sess.Questions[0].ID >= sess.Questions[1].ID {
		t.Errorf("question ids not ascending: %d, %d", sess.Questions[0].ID, sess.Questions[1].ID)
	}
}

func TestSubmitEmailFailures(t *testing.T) {
	repo := memory.NewRepository()
	seedAccount(t, repo, "active@x.com", true, "blue", "smith")
	seedAccount(t, repo, "inactive@x.com", false, "blue", "smith")
	seedAccount(t, repo, "onequestion@x.com", true, "blue")
	flow := recovery.NewFlow(repo)

	cases := []struct {
		name  string
		email string
		want  error
	}{
		{"malformed", "not-an-email", recovery.ErrInvalidEmail},
		{"empty", "", recovery.ErrInvalidEmail},
		{"unknown account", "nobody@x.com", recovery.ErrNoAccount},
		{"inactive account", "inactive@x.com", recovery.ErrInactiveAccount},
		{"single question", "onequestion@x.com", recovery.ErrInsufficientQuestions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var sess recovery.Session
			err := flow.SubmitEmail(context.Background(), &sess, tc.email, "")
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if sess.Stage != recovery.StageEmail {
				t.Errorf("stage = %q, want %q", sess.Stage, recovery.StageEmail)
			}
			if len(sess.Questions) != 0 || sess.AccountID != 0 {
				t.Errorf("failed submission left state behind: %+v", sess)
			}
		})
	}
}

func TestSubmitEmailRestartsCleanly(t *testing.T) {
	repo := memory.NewRepository()
	seedAccount(t, repo, "a@x.com", true, "blue", "smith")
	flow := recovery.NewFlow(repo)

	var sess recovery.Session
	if err := flow.SubmitEmail(context.Background(), &sess, "a@x.com", ""); err != nil {
		t.Fatalf("SubmitEmail: %v", err)
	}
	if err := flow.SubmitAnswers(context.Background(), &sess, "blue", "smith"); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if sess.Authorization == nil {
		t.Fatal("expected authorization")
	}

	// Re-entering the email stage drops the prior authorization.
	if err := flow.SubmitEmail(context.Background(), &sess, "a@x.com", ""); err != nil {
		t.Fatalf("SubmitEmail: %v", err)
	}
	if sess.Authorization != nil {
		t.Error("authorization survived an email-stage restart")
	}
	if sess.Stage != recovery.StageVerify {
		t.Errorf("stage = %q, want %q", sess.Stage, recovery.StageVerify)
	}
}

func TestSubmitAnswersNormalization(t *testing.T) {
	repo := memory.NewRepository()
	seedAccount(t, repo, "a@x.com", true, "Blue", "Smith  Jones")
	flow := recovery.NewFlow(repo)

	// Case and spacing differences never fail a legitimate answer.
	variants := [][2]string{
		{"Blue", "Smith Jones"},
		{" blue ", "smith jones"},
		{"BLUE", "  SMITH   JONES  "},
		{"bLuE", "Smith\tJones"},
	}
	for _, v := range variants {
		var sess recovery.Session
		if err := flow.SubmitEmail(context.Background(), &sess, "a@x.com", ""); err != nil {
			t.Fatalf("SubmitEmail: %v", err)
		}
		if err := flow.SubmitAnswers(context.Background(), &sess, v[0], v[1]); err != nil {
			t.Errorf("SubmitAnswers(%q, %q) = %v, want success", v[0], v[1], err)
		}
	}
}

func TestSubmitAnswersUnlimitedRetries(t *testing.T) {
	repo := memory.NewRepository()
	seedAccount(t, repo, "a@x.com", true, "blue", "smith")
	flow := recovery.NewFlow(repo)

	var sess recovery.Session
	if err := flow.SubmitEmail(context.Background(), &sess, "a@x.com", ""); err != nil {
		t.Fatalf("SubmitEmail: %v", err)
	}

	// Any number of wrong attempts keeps the pending questions and never
	// locks the account.
	for i := 0; i < 10; i++ {
		err := flow.SubmitAnswers(context.Background(), &sess, "wrong", "also wrong")
		if !errors.Is(err, recovery.ErrAnswerMismatch) {
			t.Fatalf("attempt %d: err = %v, want ErrAnswerMismatch", i, err)
		}
		if sess.Stage != recovery.StageVerify || len(sess.Questions) != 2 {
			t.Fatalf("attempt %d cleared verify state", i)
		}
	}

	if err := flow.SubmitAnswers(context.Background(), &sess, "blue", "smith"); err != nil {
		t.Fatalf("correct answers after retries: %v", err)
	}
	if sess.Stage != recovery.StageVerified {
		t.Errorf("stage = %q, want %q", sess.Stage, recovery.StageVerified)
	}
}

func TestSubmitAnswersMissing(t *testing.T) {
	repo := memory.NewRepository()
	seedAccount(t, repo, "a@x.com", true, "blue", "smith")
	flow := recovery.NewFlow(repo)

	var sess recovery.Session
	if err := flow.SubmitEmail(context.Background(), &sess, "a@x.com", ""); err != nil {
		t.Fatalf("SubmitEmail: %v", err)
	}
	for _, pair := range [][2]string{{"", "smith"}, {"blue", ""}, {"", ""}, {"  ", "smith"}} {
		err := flow.SubmitAnswers(context.Background(), &sess, pair[0], pair[1])
		if !errors.Is(err, recovery.ErrMissingAnswers) {
			t.Errorf("SubmitAnswers(%q, %q) = %v, want ErrMissingAnswers", pair[0], pair[1], err)
		}
		if len(sess.Questions) != 2 {
			t.Fatal("missing answers cleared pending questions")
		}
	}
}

func TestSubmitAnswersExpiredSession(t *testing.T) {
	repo := memory.NewRepository()
	flow := recovery.NewFlow(repo)

	// A session that never passed the email stage cannot be verified.
	var sess recovery.Session
	sess.Stage = recovery.StageVerify
	err := flow.SubmitAnswers(context.Background(), &sess, "a", "b")
	if !errors.Is(err, recovery.ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if sess.Stage != recovery.StageEmail {
		t.Errorf("stage = %q, want %q", sess.Stage, recovery.StageEmail)
	}
}

func TestAuthorizationWindow(t *testing.T) {
	repo := memory.NewRepository()
	seedAccount(t, repo, "a@x.com", true, "blue", "smith")

	now := time.Now()
	clock := func() time.Time { return now }
	flow := recovery.NewFlow(repo, recovery.WithClock(clock))

	var sess recovery.Session
	if err := flow.SubmitEmail(context.Background(), &sess, "a@x.com", "shop.php?a=1"); err != nil {
		t.Fatalf("SubmitEmail: %v", err)
	}
	if err := flow.SubmitAnswers(context.Background(), &sess, "blue", "smith"); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}

	auth, ok := flow.Authorization(&sess)
	if !ok {
		t.Fatal("expected valid authorization")
	}
	if got := auth.ExpiresAt.Sub(now); got != recovery.DefaultResetWindow {
		t.Errorf("window = %v, want %v", got, recovery.DefaultResetWindow)
	}
	if auth.Redirect != "shop.php?a=1" {
		t.Errorf("redirect = %q", auth.Redirect)
	}

	// Just inside the window it still reads back.
	now = now.Add(recovery.DefaultResetWindow - time.Second)
	if _, ok := flow.Authorization(&sess); !ok {
		t.Fatal("authorization expired early")
	}

	// Past expiry it reads as absent and is purged.
	now = now.Add(2 * time.Second)
	if _, ok := flow.Authorization(&sess); ok {
		t.Fatal("expired authorization still readable")
	}
	if sess.Authorization != nil {
		t.Error("expired authorization not purged")
	}
	if sess.Stage != recovery.StageEmail {
		t.Errorf("stage after expiry = %q, want %q", sess.Stage, recovery.StageEmail)
	}
}

func TestResolveStage(t *testing.T) {
	repo := memory.NewRepository()
	seedAccount(t, repo, "a@x.com", true, "blue", "smith")
	flow := recovery.NewFlow(repo)

	t.Run("default is email", func(t *testing.T) {
		var sess recovery.Session
		if got := flow.ResolveStage("", &sess, false); got != recovery.StageEmail {
			t.Errorf("stage = %q", got)
		}
	})

	t.Run("verify without state is forced back", func(t *testing.T) {
		var sess recovery.Session
		if got := flow.ResolveStage("verify", &sess, false); got != recovery.StageEmail {
			t.Errorf("stage = %q", got)
		}
	})

	t.Run("verify with consistent state holds", func(t *testing.T) {
		var sess recovery.Session
		if err := flow.SubmitEmail(context.Background(), &sess, "a@x.com", ""); err != nil {
			t.Fatalf("SubmitEmail: %v", err)
		}
		if got := flow.ResolveStage("verify", &sess, false); got != recovery.StageVerify {
			t.Errorf("stage = %q", got)
		}
	})

	t.Run("unknown stage is email", func(t *testing.T) {
		var sess recovery.Session
		if got := flow.ResolveStage("bogus", &sess, false); got != recovery.StageEmail {
			t.Errorf("stage = %q", got)
		}
	})

	t.Run("start over clears everything", func(t *testing.T) {
		var sess recovery.Session
		if err := flow.SubmitEmail(context.Background(), &sess, "a@x.com", ""); err != nil {
			t.Fatalf("SubmitEmail: %v", err)
		}
		if err := flow.SubmitAnswers(context.Background(), &sess, "blue", "smith"); err != nil {
			t.Fatalf("SubmitAnswers: %v", err)
		}
		if got := flow.ResolveStage("verify", &sess, true); got != recovery.StageEmail {
			t.Errorf("stage = %q", got)
		}
		if sess.Authorization != nil || len(sess.Questions) != 0 || sess.AccountID != 0 {
			t.Errorf("start over left state behind: %+v", sess)
		}
	})
}

func TestConsumeDestroysFlowState(t *testing.T) {
	repo := memory.NewRepository()
	seedAccount(t, repo, "a@x.com", true, "blue", "smith")
	flow := recovery.NewFlow(repo)

	var sess recovery.Session
	if err := flow.SubmitEmail(context.Background(), &sess, "a@x.com", ""); err != nil {
		t.Fatalf("SubmitEmail: %v", err)
	}
	if err := flow.SubmitAnswers(context.Background(), &sess, "blue", "smith"); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	flow.Consume(&sess)
	if _, ok := flow.Authorization(&sess); ok {
		t.Fatal("authorization readable after consume")
	}
	if sess.Stage != recovery.StageEmail {
		t.Errorf("stage = %q, want %q", sess.Stage, recovery.StageEmail)
	}
}
