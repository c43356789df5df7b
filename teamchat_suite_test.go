package main_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/frahmantamala/teamchat/internal"
)

func TestTeamchat(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Teamchat Suite")
}

var _ = Describe("config.example.yml", func() {
	It("is a valid configuration", func() {
		v := viper.New()
		v.SetConfigFile("config.example.yml")
		Expect(v.ReadInConfig()).To(Succeed())

		var cfg internal.Config
		Expect(v.Unmarshal(&cfg)).To(Succeed())
		cfg.ApplyDefaults()

		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Server.Origins()).To(Equal([]string{"http://localhost:3000"}))
		Expect(cfg.Realtime.PingPeriod).To(BeNumerically("<", cfg.Realtime.PongWait))
		Expect(cfg.Observability.Metrics.Enabled).To(BeTrue())
	})
})
