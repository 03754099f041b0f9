package videoclip_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/tauraamui/mapinterp/pkg/video/videobackend"
	"github.com/tauraamui/mapinterp/pkg/video/videoclip"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
)

const testClipPath = "/testroot/clips/run/output.mp4"

type failingBackend struct{}

func (failingBackend) NewEncoder(string, float64, videoframe.Dimensions) (videobackend.Encoder, error) {
	return nil, errors.New("encoder unavailable")
}

var _ = Describe("Clip writer", func() {
	var (
		mockFs  afero.Fs
		resetFs func()
		backend *videobackend.MockBackend
		dims    videoframe.Dimensions
	)

	BeforeEach(func() {
		mockFs = afero.NewMemMapFs()
		resetFs = videoclip.OverloadFS(mockFs)
		backend = videobackend.Mock()
		dims = videoframe.Dimensions{W: 4, H: 3}
	})

	AfterEach(func() {
		resetFs()
	})

	Context("Opening", func() {
		It("Creates the parent directory and an encoder with the declared settings", func() {
			w, err := videoclip.Open(backend, testClipPath, 30, dims)
			Expect(err).To(BeNil())
			Expect(w.Path()).To(Equal(testClipPath))

			exists, err := afero.DirExists(mockFs, "/testroot/clips/run")
			Expect(err).To(BeNil())
			Expect(exists).To(BeTrue())

			enc := backend.Last()
			Expect(enc.FPS).To(Equal(float64(30)))
			Expect(enc.Dims).To(Equal(dims))
			Expect(w.Close()).To(BeNil())
		})

		It("Rejects non positive sizes and frame rates", func() {
			_, err := videoclip.Open(backend, testClipPath, 0, dims)
			Expect(err).ToNot(BeNil())
			_, err = videoclip.Open(backend, testClipPath, 30, videoframe.Dimensions{W: 0, H: 3})
			Expect(err).ToNot(BeNil())
			_, err = videoclip.Open(backend, "", 30, dims)
			Expect(err).ToNot(BeNil())
			Expect(backend.Encoders).To(BeEmpty())
		})

		It("Surfaces encoder failures", func() {
			_, err := videoclip.Open(failingBackend{}, testClipPath, 30, dims)
			Expect(err).To(MatchError("encoder unavailable"))
		})
	})

	Context("Appending", func() {
		It("Writes frames in append order", func() {
			w, err := videoclip.Open(backend, testClipPath, 30, dims)
			Expect(err).To(BeNil())

			for i := 0; i < 3; i++ {
				f := videoframe.New(dims, nil)
				f.Pix[0] = uint8(i)
				Expect(w.AppendFrame(f)).To(Succeed())
			}
			Expect(w.FrameCount()).To(Equal(3))
			Expect(w.Close()).To(Succeed())

			frames := backend.Last().Frames
			Expect(frames).To(HaveLen(3))
			for i, f := range frames {
				Expect(f.Pix[0]).To(Equal(uint8(i)))
			}
		})

		It("Fails with a dimension mismatch for wrongly sized frames", func() {
			w, err := videoclip.Open(backend, testClipPath, 30, dims)
			Expect(err).To(BeNil())
			defer w.Close()

			Expect(w.AppendFrame(videoframe.New(dims, nil))).To(Succeed())
			err = w.AppendFrame(videoframe.New(videoframe.Dimensions{W: 5, H: 3}, nil))

			var mismatch *videoclip.DimensionMismatchError
			Expect(errors.As(err, &mismatch)).To(BeTrue())
			Expect(mismatch.Index).To(Equal(1))
			Expect(mismatch.Expected).To(Equal(dims))
			Expect(w.FrameCount()).To(Equal(1))
		})

		It("Fails to append once closed", func() {
			w, err := videoclip.Open(backend, testClipPath, 30, dims)
			Expect(err).To(BeNil())
			Expect(w.Close()).To(Succeed())
			Expect(w.Close()).To(Succeed())

			Expect(w.AppendFrame(videoframe.New(dims, nil))).To(MatchError("cannot append frame to closed clip"))
		})
	})

	Context("Scoped writing", func() {
		It("Closes the clip when the callback succeeds", func() {
			err := videoclip.With(backend, testClipPath, 30, dims, func(w videoclip.Writer) error {
				return w.AppendFrame(videoframe.New(dims, nil))
			})
			Expect(err).To(BeNil())
			Expect(backend.Last().Closed).To(BeTrue())
		})

		It("Closes the clip and returns the callback error when it fails", func() {
			err := videoclip.With(backend, testClipPath, 30, dims, func(w videoclip.Writer) error {
				return errors.New("pipeline aborted")
			})
			Expect(err).To(MatchError("pipeline aborted"))
			Expect(backend.Last().Closed).To(BeTrue())
		})
	})
})
