// Command print_glide prints the resolved per-age return and volatility of
// every account in a scenario file, after strategy expansion and glide path
// file loading. Handy for eyeballing what a linear strategy actually
// expands to.
package main

import (
	"fmt"
	"os"

	"github.com/fincast/fincast/internal/config"
	"github.com/fincast/fincast/internal/domain"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: print_glide <scenario.yaml>")
		os.Exit(2)
	}

	scenario, err := config.NewParser().LoadScenario(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	model := scenario.Assumptions.AssetModel
	if model == nil {
		model = domain.DefaultAssetModel()
	}

	for i := range scenario.Accounts {
		account := &scenario.Accounts[i]
		fmt.Printf("%s (%s, owner %s)\n", account.Name, account.Kind, account.Owner)
		for _, band := range account.GlidePath {
			vol := band.Volatility
			if !vol.IsPositive() {
				class := account.AssetClass
				if class == "" {
					class = domain.DefaultAssetClass
				}
				if cv := model.ClassVolatility(class); cv.IsPositive() {
					vol = cv
				} else {
					vol = domain.VolatilityForReturn(band.AnnualReturn)
				}
			}
			if band.Open() {
				fmt.Printf("  age *     return %s  volatility %s\n",
					band.AnnualReturn.StringFixed(4), vol.StringFixed(4))
				continue
			}
			fmt.Printf("  age <=%-3d return %s  volatility %s\n",
				band.MaxAge, band.AnnualReturn.StringFixed(4), vol.StringFixed(4))
		}
		fmt.Println()
	}
}
