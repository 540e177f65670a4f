package userauth

import (
	"context"
	stderrors "errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// RegisterUserMessage carries a registration request. Empty usernames and
// passwords are rejected here, before the store is reached.
type RegisterUserMessage struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Username, validation.Required, validation.Length(1, 128)),
		validation.Field(&e.Password, validation.Required, validation.Length(1, 512)),
	)
}

// RegisterUserHandler creates credential records. Exactly one durable record
// is created on success; nothing is written on any failure path.
type RegisterUserHandler struct {
	users  Users
	logger Logger
}

func NewRegisterUserHandler(users Users) *RegisterUserHandler {
	return &RegisterUserHandler{
		users:  users,
		logger: defLogger{},
	}
}

func (h *RegisterUserHandler) WithLogger(l Logger) *RegisterUserHandler {
	h.logger = l
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload").
			WithTextCode(TextCodeRegistrationInvalid)
	}

	// Advisory check only: the insert below is what actually enforces
	// uniqueness. A concurrent registration racing past this lookup still
	// loses against the unique constraint and maps to the same conflict.
	if _, err := h.users.GetByUsername(ctx, event.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !stderrors.Is(err, ErrIdentityNotFound) {
		return nil, err
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Username:     event.Username,
		PasswordHash: hash,
	}

	created, err := h.users.Register(ctx, user)
	if err != nil {
		return nil, err
	}

	return created, nil
}
