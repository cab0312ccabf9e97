package seed

import (
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/learnhub/internal/app/models"
	"github.com/yigit/learnhub/internal/app/repositories"
	"github.com/yigit/learnhub/internal/config"
	"github.com/yigit/learnhub/internal/pkg/auth"
	"github.com/yigit/learnhub/internal/testutil"
)

func TestCreateDefaultAdmin(t *testing.T) {
	t.Parallel()

	users := repositories.NewUserRepository(testutil.NewDatabase(t))
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewPasswordHasher() error = %v", err)
	}
	ctx := t.Context()
	cfg := config.SeedConfig{AdminName: "admin", AdminEmail: "admin@example.com", AdminPassword: "Str0ng!Pass"}

	if err := CreateDefaultAdmin(ctx, config.SeedConfig{AdminName: "admin"}, users, hasher, zerolog.Nop()); err != nil {
		t.Fatalf("unconfigured seed error = %v", err)
	}
	if exists, _ := users.EmailExists(ctx, cfg.AdminEmail); exists {
		t.Fatal("unconfigured seed created an account")
	}

	for i := 0; i < 2; i++ {
		if err := CreateDefaultAdmin(ctx, cfg, users, hasher, zerolog.Nop()); err != nil {
			t.Fatalf("CreateDefaultAdmin() #%d error = %v", i+1, err)
		}
	}

	admin, err := users.GetByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if admin.RoleType != models.RoleAdmin || !hasher.Check(admin.Password, cfg.AdminPassword) {
		t.Errorf("seeded admin = %+v", admin)
	}
}
