package service_test

import (
	"context"

	"github.com/dcm-project/orchestration-router/internal/api/v1alpha1"
	"github.com/dcm-project/orchestration-router/internal/config"
	"github.com/dcm-project/orchestration-router/internal/service"
	"github.com/dcm-project/orchestration-router/internal/store"
	"github.com/dcm-project/orchestration-router/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore() (store.Store, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())

	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)

	Expect(db.AutoMigrate(&model.Policy{}, &model.Invocation{})).To(Succeed())
	return store.NewStore(db), db
}

func policyRequest(name string) *v1alpha1.Policy {
	return &v1alpha1.Policy{
		Name:            name,
		DefaultProvider: "aws",
		ProviderTargets: map[string]string{
			"aws":   "https://abc123.lambda-url.us-east-1.on.aws/",
			"azure": "https://demo.azurewebsites.net/api/run",
		},
	}
}

var _ = Describe("PolicyService", func() {
	var (
		db            *gorm.DB
		policyService *service.PolicyService
		ctx           context.Context
	)

	BeforeEach(func() {
		var dataStore store.Store
		dataStore, db = newTestStore()
		policyService = service.NewPolicyService(dataStore)
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	Describe("CreatePolicy", func() {
		It("creates an inactive policy", func() {
			created, err := policyService.CreatePolicy(ctx, policyRequest("aws-first"))

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Name).To(Equal("aws-first"))
			Expect(*created.IsActive).To(BeFalse())
			Expect(created.ProviderTargets).To(HaveKey("aws"))
			Expect(created.ProviderTargets).NotTo(HaveKey("gcp"))
		})

		It("rejects an empty name", func() {
			req := policyRequest("")

			_, err := policyService.CreatePolicy(ctx, req)

			Expect(err).To(HaveOccurred())
			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeValidation))
		})

		It("rejects an unknown default provider", func() {
			req := policyRequest("bad-provider")
			req.DefaultProvider = "digitalocean"

			_, err := policyService.CreatePolicy(ctx, req)

			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeValidation))
		})

		It("rejects an unknown target provider", func() {
			req := policyRequest("bad-target-provider")
			req.ProviderTargets["ibm"] = "https://example.com"

			_, err := policyService.CreatePolicy(ctx, req)

			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeValidation))
		})

		It("rejects an empty target", func() {
			req := policyRequest("empty-target")
			req.ProviderTargets["gcp"] = "  "

			_, err := policyService.CreatePolicy(ctx, req)

			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeValidation))
		})

		It("returns a conflict for a duplicate name", func() {
			_, err := policyService.CreatePolicy(ctx, policyRequest("duplicate"))
			Expect(err).NotTo(HaveOccurred())

			_, err = policyService.CreatePolicy(ctx, policyRequest("duplicate"))

			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeConflict))
		})
	})

	Describe("ActivatePolicy", func() {
		It("activates the named policy and deactivates the previous one", func() {
			_, err := policyService.CreatePolicy(ctx, policyRequest("aws-first"))
			Expect(err).NotTo(HaveOccurred())
			_, err = policyService.CreatePolicy(ctx, policyRequest("azure-first"))
			Expect(err).NotTo(HaveOccurred())

			_, err = policyService.ActivatePolicy(ctx, "aws-first")
			Expect(err).NotTo(HaveOccurred())
			activated, err := policyService.ActivatePolicy(ctx, "azure-first")
			Expect(err).NotTo(HaveOccurred())
			Expect(*activated.IsActive).To(BeTrue())

			policies, err := policyService.ListPolicies(ctx)
			Expect(err).NotTo(HaveOccurred())

			activeNames := []string{}
			for _, p := range policies {
				if p.IsActive != nil && *p.IsActive {
					activeNames = append(activeNames, p.Name)
				}
			}
			Expect(activeNames).To(Equal([]string{"azure-first"}))
		})

		It("returns not-found for a missing policy", func() {
			_, err := policyService.ActivatePolicy(ctx, "missing")

			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeNotFound))
		})
	})

	Describe("UpdateProviderTarget", func() {
		It("updates the target", func() {
			_, err := policyService.CreatePolicy(ctx, policyRequest("aws-first"))
			Expect(err).NotTo(HaveOccurred())

			updated, err := policyService.UpdateProviderTarget(ctx, "aws-first", "aws", "https://new-url.lambda-url.us-east-1.on.aws/")

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ProviderTargets["aws"]).To(Equal("https://new-url.lambda-url.us-east-1.on.aws/"))
		})

		It("rejects an unknown provider", func() {
			_, err := policyService.CreatePolicy(ctx, policyRequest("aws-first"))
			Expect(err).NotTo(HaveOccurred())

			_, err = policyService.UpdateProviderTarget(ctx, "aws-first", "heroku", "https://example.com")

			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeValidation))
		})

		It("rejects a malformed URL target", func() {
			_, err := policyService.CreatePolicy(ctx, policyRequest("aws-first"))
			Expect(err).NotTo(HaveOccurred())

			_, err = policyService.UpdateProviderTarget(ctx, "aws-first", "aws", "http://%zz")

			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeValidation))
		})

		It("returns not-found for a missing policy", func() {
			_, err := policyService.UpdateProviderTarget(ctx, "missing", "aws", "https://example.com")

			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeNotFound))
		})
	})

	Describe("DeletePolicy", func() {
		It("removes the policy", func() {
			_, err := policyService.CreatePolicy(ctx, policyRequest("to-delete"))
			Expect(err).NotTo(HaveOccurred())

			Expect(policyService.DeletePolicy(ctx, "to-delete")).To(Succeed())

			_, err = policyService.GetPolicy(ctx, "to-delete")
			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeNotFound))
		})
	})

	Describe("EnsureSeedPolicy", func() {
		It("creates and activates the seed policy on an empty store", func() {
			seed := &config.SeedConfig{
				PolicyName:      "aws-first",
				DefaultProvider: "aws",
				AWSTarget:       "https://abc123.lambda-url.us-east-1.on.aws/",
			}

			Expect(policyService.EnsureSeedPolicy(ctx, seed)).To(Succeed())

			active, err := policyService.GetActivePolicy(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(active.Name).To(Equal("aws-first"))
		})

		It("does nothing when policies already exist", func() {
			_, err := policyService.CreatePolicy(ctx, policyRequest("existing"))
			Expect(err).NotTo(HaveOccurred())

			seed := &config.SeedConfig{PolicyName: "seeded", DefaultProvider: "aws", AWSTarget: "https://example.com"}
			Expect(policyService.EnsureSeedPolicy(ctx, seed)).To(Succeed())

			_, err = policyService.GetPolicy(ctx, "seeded")
			svcErr := err.(*service.ServiceError)
			Expect(svcErr.Code).To(Equal(service.ErrCodeNotFound))
		})

		It("does nothing without a configured seed name", func() {
			Expect(policyService.EnsureSeedPolicy(ctx, &config.SeedConfig{})).To(Succeed())

			policies, err := policyService.ListPolicies(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(policies).To(BeEmpty())
		})
	})
})
