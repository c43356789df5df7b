package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/teamchat/internal/auth"
	"github.com/frahmantamala/teamchat/internal/core/common/validation"
	companyDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/department"
	groupDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/group"
	messageDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/message"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo company, its departments, their chat groups and sample accounts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := setupLogger(cfg)

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			return fmt.Errorf("failed to init orm: %w", err)
		}

		return seed(context.Background(), gormDB, cfg.Security.BCryptCost, clearData, log)
	},
}

type seedAccount struct {
	Name       string
	Email      string
	Department string
}

const (
	seedCompany          = "Nexus Corp"
	seedAdminEmail       = "admin@nexuscorp.com"
	seedAdminPassword    = "admin123"
	seedEmployeePassword = "emp123"
)

var seedEmployees = []seedAccount{
	{"Alice Johnson", "alice@nexuscorp.com", "Frontend"},
	{"Bob Smith", "bob@nexuscorp.com", "Frontend"},
	{"Carol Davis", "carol@nexuscorp.com", "Backend"},
	{"David Wilson", "david@nexuscorp.com", "Backend"},
	{"Eva Brown", "eva@nexuscorp.com", "Sales"},
	{"Frank Miller", "frank@nexuscorp.com", "Production"},
	{"Grace Lee", "grace@nexuscorp.com", "HR"},
}

// seed is idempotent: existing rows are kept and missing ones created.
func seed(ctx context.Context, db *gorm.DB, bcryptCost int, clear bool, log *slog.Logger) error {
	adminHash, err := auth.HashPassword(seedAdminPassword, bcryptCost)
	if err != nil {
		return err
	}
	employeeHash, err := auth.HashPassword(seedEmployeePassword, bcryptCost)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			for _, model := range []interface{}{
				&messageDatamodel.Message{},
				&groupDatamodel.Group{},
				&userDatamodel.User{},
				&departmentDatamodel.Department{},
				&companyDatamodel.Company{},
			} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					return fmt.Errorf("clear %T: %w", model, err)
				}
			}
			log.Info("cleared existing data")
		}

		company := companyDatamodel.Company{Name: seedCompany}
		if err := tx.Where(companyDatamodel.Company{Name: seedCompany}).
			Attrs(companyDatamodel.Company{Description: "Demo company", IsActive: true}).
			FirstOrCreate(&company).Error; err != nil {
			return fmt.Errorf("seed company: %w", err)
		}

		departments := make(map[string]int64, len(validation.DepartmentNames))
		for _, name := range validation.DepartmentNames {
			dept := departmentDatamodel.Department{}
			if err := tx.Where(departmentDatamodel.Department{Name: name, CompanyID: company.ID}).
				Attrs(departmentDatamodel.Department{Description: name + " department", IsActive: true}).
				FirstOrCreate(&dept).Error; err != nil {
				return fmt.Errorf("seed department %s: %w", name, err)
			}
			departments[name] = dept.ID

			grp := groupDatamodel.Group{}
			if err := tx.Where(groupDatamodel.Group{CompanyID: company.ID, DepartmentID: dept.ID}).
				Attrs(groupDatamodel.Group{
					Name:        name + " Team",
					Description: fmt.Sprintf("Official chat group for %s department", name),
					IsActive:    true,
				}).
				FirstOrCreate(&grp).Error; err != nil {
				return fmt.Errorf("seed group %s: %w", name, err)
			}
		}

		admin := userDatamodel.User{}
		if err := tx.Where(userDatamodel.User{Email: seedAdminEmail}).
			Attrs(userDatamodel.User{
				Name:         "System Admin",
				PasswordHash: adminHash,
				Role:         "ADMIN",
				CompanyID:    company.ID,
				IsActive:     true,
			}).
			FirstOrCreate(&admin).Error; err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}

		for _, e := range seedEmployees {
			deptID := departments[e.Department]
			u := userDatamodel.User{}
			if err := tx.Where(userDatamodel.User{Email: e.Email}).
				Attrs(userDatamodel.User{
					Name:         e.Name,
					PasswordHash: employeeHash,
					Role:         "EMPLOYEE",
					CompanyID:    company.ID,
					DepartmentID: &deptID,
					IsActive:     true,
				}).
				FirstOrCreate(&u).Error; err != nil {
				return fmt.Errorf("seed employee %s: %w", e.Email, err)
			}
		}

		log.Info("seed complete",
			"company", seedCompany,
			"departments", len(departments),
			"admin", seedAdminEmail,
			"employees", len(seedEmployees))
		return nil
	})
}
