package database_test

import (
	"errors"
	"os"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"github.com/tauraamui/mapinterp/pkg/database"
	"github.com/tauraamui/mapinterp/pkg/database/dbconn"
)

var _ = Describe("Database", func() {
	var (
		mockFs      afero.Fs
		resets      []func()
		openedPaths []string
	)

	BeforeEach(func() {
		os.Unsetenv("MAPINTERP_DB")
		mockFs = afero.NewMemMapFs()
		openedPaths = nil
		resets = []func(){
			database.OverloadFS(mockFs),
			database.OverloadUC(func() (string, error) { return "/testcache", nil }),
			database.OverloadOpenDBConnection(func(path string) (dbconn.GormWrapper, error) {
				openedPaths = append(openedPaths, path)
				return dbconn.Mock(), nil
			}),
		}
	})

	AfterEach(func() {
		for _, reset := range resets {
			reset()
		}
	})

	Context("Setup run against blank file system", func() {
		It("Should create full file path for DB and connect to it", func() {
			Expect(database.Setup()).To(BeNil())

			exists, err := afero.Exists(mockFs, "/testcache/tauraamui/mapinterp/history.db")
			Expect(err).To(BeNil())
			Expect(exists).To(BeTrue())
			Expect(openedPaths).To(Equal([]string{"/testcache/tauraamui/mapinterp/history.db"}))
		})

		It("Should refuse to set up over an existing DB file", func() {
			Expect(database.Setup()).To(BeNil())

			err := database.Setup()
			Expect(err).ToNot(BeNil())
			Expect(errors.Is(err, database.ErrDBAlreadyExists)).To(BeTrue())
		})
	})

	It("Should prefer the path given by the environment", func() {
		os.Setenv("MAPINTERP_DB", "/elsewhere/runs.db")
		defer os.Unsetenv("MAPINTERP_DB")

		path, err := database.Path()
		Expect(err).To(BeNil())
		Expect(path).To(Equal("/elsewhere/runs.db"))

		_, err = database.Connect()
		Expect(err).To(BeNil())
		Expect(openedPaths).To(Equal([]string{"/elsewhere/runs.db"}))
	})

	It("Should remove the DB file on destroy", func() {
		Expect(database.Setup()).To(BeNil())
		Expect(database.Destroy()).To(BeNil())

		exists, err := afero.Exists(mockFs, "/testcache/tauraamui/mapinterp/history.db")
		Expect(err).To(BeNil())
		Expect(exists).To(BeFalse())
	})

	It("Should return error from setup due to path resolution failure", func() {
		reset := database.OverloadUC(func() (string, error) {
			return "", errors.New("test cache dir error")
		})
		defer reset()

		err := database.Setup()

		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(Equal("unable to resolve history.db database file location: test cache dir error"))
	})
})
