package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/campi/campi/internal/handlers"
	"github.com/campi/campi/internal/models"
	"github.com/campi/campi/internal/services"
	"github.com/campi/campi/internal/store"
	"github.com/campi/campi/internal/store/migrations"
	"github.com/campi/campi/pkg/pool"
)

type staticStats struct {
	stats pool.Stats
}

func (s staticStats) Stats() pool.Stats { return s.stats }

var _ = Describe("Handler", func() {
	var (
		ctx       context.Context
		db        *sql.DB
		accessLog *services.AccessLog
		router    *gin.Engine
	)

	record := func(path string, status int) {
		accessLog.Record(ctx, models.NewRequest(uuid.New(), "127.0.0.1:1234", models.Response{
			RequestLine: "GET " + path + " HTTP/1.1",
			Path:        path,
			Status:      status,
			Bytes:       10,
			Duration:    time.Millisecond,
		}))
	}

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())

		accessLog = services.NewAccessLogService(store.NewStore(db), nil)

		h := handlers.New(staticStats{stats: pool.Stats{Size: 4, Active: 4, Submitted: 7, Completed: 6, Failed: 1}}, accessLog)
		router = gin.New()
		h.Register(router.Group("/api/v1"))
	})

	AfterEach(func() {
		db.Close()
	})

	Context("GetStatus", func() {
		It("should return the pool snapshot", func() {
			w := get("/api/v1/status")

			Expect(w.Code).To(Equal(http.StatusOK))
			var body pool.Stats
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Size).To(Equal(4))
			Expect(body.Submitted).To(Equal(uint64(7)))
			Expect(body.Failed).To(Equal(uint64(1)))
		})
	})

	Context("GetRequests", func() {
		BeforeEach(func() {
			for range 5 {
				record("/", 200)
			}
			record("/missing", 404)
			record("/capture", 503)
		})

		It("should return the first page by default", func() {
			w := get("/api/v1/requests")

			Expect(w.Code).To(Equal(http.StatusOK))
			var body handlers.RequestListResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Total).To(Equal(7))
			Expect(body.Page).To(Equal(1))
			Expect(body.PageCount).To(Equal(1))
			Expect(body.Requests).To(HaveLen(7))
		})

		It("should paginate", func() {
			w := get("/api/v1/requests?page=2&pageSize=3")

			var body handlers.RequestListResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body.PageCount).To(Equal(3))
			Expect(body.Requests).To(HaveLen(3))
		})

		It("should filter by several statuses", func() {
			w := get("/api/v1/requests?status=404&status=503")

			var body handlers.RequestListResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Total).To(Equal(2))
		})

		It("should filter by path", func() {
			w := get("/api/v1/requests?path=/capture")

			var body handlers.RequestListResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Total).To(Equal(1))
			Expect(body.Requests[0].Status).To(Equal(503))
		})

		DescribeTable("should reject invalid parameters",
			func(query string) {
				w := get("/api/v1/requests?" + query)
				Expect(w.Code).To(Equal(http.StatusBadRequest))
			},
			Entry("zero page", "page=0"),
			Entry("negative page size", "pageSize=-1"),
			Entry("non numeric status", "status=ok"),
			Entry("out of range status", "status=42"),
		)

		It("should return an empty list instead of null", func() {
			w := get("/api/v1/requests?path=/nothing")

			Expect(w.Body.String()).To(ContainSubstring(`"requests":[]`))
		})
	})

	Context("ExportRequests", func() {
		It("should return a workbook", func() {
			record("/", 200)

			w := get("/api/v1/requests/export")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("campi-requests-"))

			f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()
			rows, err := f.GetRows("Sheet1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
		})
	})

	Context("GetFailures", func() {
		It("should list recorded failures", func() {
			accessLog.RecordFailure(ctx, &pool.TaskPanicError{WorkerID: 1, Value: "boom"})

			w := get("/api/v1/failures")

			Expect(w.Code).To(Equal(http.StatusOK))
			var body struct {
				Failures []models.TaskFailure `json:"failures"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Failures).To(HaveLen(1))
			Expect(body.Failures[0].WorkerID).To(Equal(1))
		})

		It("should reject a bad limit", func() {
			w := get("/api/v1/failures?limit=abc")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("store failure", func() {
		It("should answer 500", func() {
			db.Close()

			w := get("/api/v1/requests")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
