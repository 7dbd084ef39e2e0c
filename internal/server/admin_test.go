package server_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campi/campi/internal/config"
	"github.com/campi/campi/internal/server"
	"github.com/campi/campi/internal/server/middlewares"
)

const secret = "test-secret"

func signToken(key string, expiresIn time.Duration) string {
	GinkgoHelper()
	claims := jwt.RegisteredClaims{
		Subject:   "operator",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	Expect(err).NotTo(HaveOccurred())
	return signed
}

var _ = Describe("AdminServer", func() {
	var (
		admin   *server.AdminServer
		adminCf config.Admin
		auth    config.Authentication
	)

	registerPing := func(router *gin.RouterGroup) {
		router.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"subject": c.GetString(middlewares.SubjectKey)})
		})
		router.GET("/panic", func(*gin.Context) {
			panic("handler blew up")
		})
	}

	do := func(target, token string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		admin.Handler().ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		adminCf = config.Admin{Enabled: true, Mode: config.ServerModeDev, Address: "127.0.0.1:0"}
		auth = config.Authentication{}
	})

	Context("without authentication", func() {
		BeforeEach(func() {
			reg := prometheus.NewRegistry()
			counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "campi_test_total", Help: "test"})
			reg.MustRegister(counter)
			counter.Inc()

			admin = server.NewAdminServer(adminCf, auth, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), registerPing)
		})

		It("should report health", func() {
			w := do("/health", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"ok"`))
		})

		It("should expose metrics", func() {
			w := do("/metrics", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("campi_test_total 1"))
		})

		It("should serve api routes", func() {
			w := do("/api/v1/ping", "")
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("should answer json 404 for unknown routes", func() {
			w := do("/api/v1/unknown", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).To(ContainSubstring(`"error"`))
		})

		It("should recover from handler panics", func() {
			w := do("/api/v1/panic", "")
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Context("with authentication", func() {
		BeforeEach(func() {
			auth = config.Authentication{Enabled: true, JWTSecret: secret}
			admin = server.NewAdminServer(adminCf, auth, nil, registerPing)
		})

		It("should keep health open", func() {
			Expect(do("/health", "").Code).To(Equal(http.StatusOK))
		})

		It("should accept a valid token", func() {
			w := do("/api/v1/ping", signToken(secret, time.Hour))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"operator"`))
		})

		DescribeTable("should reject",
			func(token func() string) {
				w := do("/api/v1/ping", token())
				Expect(w.Code).To(Equal(http.StatusUnauthorized))
				Expect(w.Body.String()).To(ContainSubstring("unauthorized"))
			},
			Entry("a missing token", func() string { return "" }),
			Entry("a malformed token", func() string { return "not-a-jwt" }),
			Entry("a token signed with another key", func() string { return signToken("other", time.Hour) }),
			Entry("an expired token", func() string { return signToken(secret, -time.Minute) }),
		)

		It("should reject tokens using another algorithm", func() {
			token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x"}).
				SignedString(jwt.UnsafeAllowNoneSignatureType)
			Expect(err).NotTo(HaveOccurred())

			Expect(do("/api/v1/ping", token).Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Context("lifecycle", func() {
		It("should listen and stop", func() {
			admin = server.NewAdminServer(adminCf, auth, nil, registerPing)

			errCh := make(chan error, 1)
			go func() { errCh <- admin.Start(context.Background()) }()
			Eventually(admin.Addr).ShouldNot(BeNil())

			resp, err := http.Get(fmt.Sprintf("http://%s/health", admin.Addr()))
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			Expect(admin.Stop(ctx)).To(Succeed())

			var startErr error
			Eventually(errCh).Should(Receive(&startErr))
			Expect(errors.Is(startErr, http.ErrServerClosed)).To(BeTrue())
		})
	})
})
