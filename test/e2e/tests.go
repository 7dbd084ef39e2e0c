package main

import (
	"context"
	"net/http"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campi/campi/test/e2e/infra"
	"github.com/campi/campi/test/e2e/service"
)

var _ = Describe("campi", Ordered, func() {
	var (
		ctx    context.Context
		camera *service.CameraSvc
		admin  *service.AdminSvc
	)

	BeforeAll(func() {
		ctx = context.Background()

		Expect(infraManager.StartCampi(infra.CampiConfig{
			Address:      cfg.CampiAddress,
			AdminAddress: cfg.AdminAddress,
			Workers:      cfg.Workers,
			JWTSecret:    cfg.JWTSecret,
		})).To(Succeed())

		token, err := infraManager.GenerateToken("e2e")
		Expect(err).NotTo(HaveOccurred())

		camera = service.NewCameraService(cfg.CampiAddress)
		admin = service.NewAdminService("http://"+cfg.AdminAddress, token)

		Eventually(func() (int, error) { return admin.StatusCode(ctx, "/health") }).Should(Equal(http.StatusOK))
	})

	AfterAll(func() {
		Expect(infraManager.StopCampi()).To(Succeed())
	})

	Context("camera server", func() {
		It("serves the index page", func() {
			resp, err := camera.Get("/")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Status).To(Equal(200))
			Expect(string(resp.Payload)).To(ContainSubstring("<html"))
		})

		It("serves a jpeg frame", func() {
			resp, err := camera.Get("/capture")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Status).To(Equal(200))
			Expect(resp.Payload[:2]).To(Equal([]byte{0xff, 0xd8}))
		})

		It("answers 404 for anything else", func() {
			resp, err := camera.Get("/elsewhere")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Status).To(Equal(404))
		})

		// Given more clients than workers
		// When they all ask for the index at once
		// Then all of them get the same bytes
		It("gives every concurrent client the same response", func() {
			clients := cfg.Workers * 8
			raws := make([][]byte, clients)

			var wg sync.WaitGroup
			for i := range clients {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					resp, err := camera.Get("/")
					Expect(err).NotTo(HaveOccurred())
					raws[i] = resp.Raw
				}()
			}
			wg.Wait()

			for _, raw := range raws {
				Expect(raw).To(Equal(raws[0]))
			}
		})
	})

	Context("admin api", func() {
		It("reports the pool", func() {
			stats, err := admin.Status(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Size).To(Equal(cfg.Workers))
			Expect(stats.Active).To(Equal(cfg.Workers))
			Expect(stats.Completed).To(BeNumerically(">=", 3))
		})

		It("lists the served requests", func() {
			Eventually(func() (int, error) {
				list, err := admin.Requests(ctx, "status=404")
				if err != nil {
					return 0, err
				}
				return list.Total, nil
			}).Should(BeNumerically(">=", 1))
		})

		It("exposes metrics", func() {
			Expect(admin.StatusCode(ctx, "/metrics")).To(Equal(http.StatusOK))
		})

		It("rejects requests without a token", func() {
			if cfg.JWTSecret == "" {
				Skip("authentication disabled")
			}
			Expect(admin.StatusCode(ctx, "/api/v1/status")).To(Equal(http.StatusUnauthorized))
		})
	})
})
