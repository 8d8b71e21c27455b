package taxonomy

// Default returns the built-in master risk table. Keyword lists carry the
// wording variants seen across Product Highlight Sheets; descriptions feed
// the semantic matching tier.
func Default() *Taxonomy {
	t, err := New(defaultCategories)
	if err != nil {
		// The built-in table is validated by tests; a bad entry is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return t
}

var defaultCategories = []Category{
	// Market and asset class risks.
	{Name: "Market Risk", Keywords: []string{"market risk", "market risks", "market volatility", "market movements", "market downturns", "market stress"},
		Description: "market movements volatility financial market conditions"},
	{Name: "Equity Risk", Keywords: []string{"equity risk", "equity risks", "stock risk", "share price risk", "share risk"},
		Description: "stock share price volatility company performance"},
	{Name: "Interest Rate Risk", Keywords: []string{"interest rate risk", "interest rate risks", "rate risk", "ir risk", "duration risk", "yield curve risk"},
		Description: "interest rate changes bond value duration"},
	{Name: "Credit Risk", Keywords: []string{"credit risk", "credit risks", "default risk", "issuer risk", "credit default", "issuer default", "credit quality"},
		Description: "issuer default credit quality financial health deterioration"},
	{Name: "Sovereign Risk", Keywords: []string{"sovereign risk", "sovereign risks", "government risk", "country risk", "government default"}},
	{Name: "Currency Risk", Keywords: []string{"currency risk", "currency risks", "fx risk", "foreign exchange risk", "exchange rate risk", "currency exposure"},
		Description: "exchange rate fluctuations foreign currency exposure"},
	{Name: "Commodity Risk", Keywords: []string{"commodity risk", "commodity risks", "commodity price risk"}},

	// Liquidity and funding.
	{Name: "Liquidity Risk", Keywords: []string{"liquidity risk", "liquidity risks", "illiquidity risk", "illiquidity", "lack of liquidity", "limited liquidity"},
		Description: "difficulty selling assets marketability trading"},
	{Name: "Redemption Risk", Keywords: []string{"redemption risk", "redemption risks", "early redemption", "redemption delay"}},
	{Name: "Funding Liquidity Risk", Keywords: []string{"funding liquidity risk", "funding risk", "liquidity funding risk"}},

	// Concentration and correlation.
	{Name: "Concentration Risk", Keywords: []string{"concentration risk", "concentration risks", "single issuer risk", "geographic concentration", "lack of diversification", "concentrated exposure"},
		Description: "single issuer geographic sector concentration"},
	{Name: "Correlation Risk", Keywords: []string{"correlation risk", "correlation risks", "correlation breakdown"}},
	{Name: "Sector Concentration Risk", Keywords: []string{"sector risk", "sector concentration", "industry risk"}},

	// Investment strategy.
	{Name: "Style Risk", Keywords: []string{"style risk", "growth risk", "value risk", "investment style risk"}},
	{Name: "Volatility Risk", Keywords: []string{"volatility risk", "volatility risks", "price volatility", "higher volatility"},
		Description: "price fluctuations market volatility"},
	{Name: "Derivatives Risk", Keywords: []string{"derivatives risk", "derivative risk", "derivatives risks"},
		Description: "derivative instruments complex financial products"},
	{Name: "Hedging Risk", Keywords: []string{"hedging risk", "hedging risks", "hedge risk"}},
	{Name: "Leverage Risk", Keywords: []string{"leverage risk", "leveraging risk", "gearing risk"},
		Description: "borrowing amplified exposure financial leverage"},
	{Name: "Short Selling Risk", Keywords: []string{"short selling risk", "shorting risk", "short position risk"}},

	// Counterparty and operational.
	{Name: "Counterparty Risk", Keywords: []string{"counterparty risk", "counterparty risks", "counterparty default"},
		Description: "counterparty default inability to meet obligations"},
	{Name: "Operational Risk", Keywords: []string{"operational risk", "operational risks", "operational failure"}},
	{Name: "Management Risk", Keywords: []string{"management risk", "manager risk", "fund manager risk"}},
	{Name: "Model Risk", Keywords: []string{"model risk", "model risks", "quantitative model risk"}},

	// Economic and macro.
	{Name: "Inflation Risk", Keywords: []string{"inflation risk", "inflation risks", "inflationary risk"}},
	{Name: "Deflation Risk", Keywords: []string{"deflation risk", "deflation risks", "deflationary risk"}},
	{Name: "Recession Risk", Keywords: []string{"recession risk", "economic downturn risk", "economic risk"}},

	// Regulatory and legal.
	{Name: "Political Risk", Keywords: []string{"political risk", "political risks", "geopolitical risk"}},
	{Name: "Regulatory Risk", Keywords: []string{"regulatory risk", "regulatory risks", "legal risk", "compliance risk"}},
	{Name: "Expropriation Risk", Keywords: []string{"expropriation risk", "nationalization risk", "confiscation risk"}},

	// Specialised product risks.
	{Name: "High Yield Risk", Keywords: []string{"high yield risk", "junk bond risk", "sub investment grade risk", "below investment grade"},
		Description: "below investment grade junk bonds credit quality"},
	{Name: "Perpetual Bond Risk", Keywords: []string{"perpetual bond risk", "perpetual bonds risk", "perpetual securities risk", "hybrid securities risk"},
		Description: "perpetual securities no maturity date call risk"},
	{Name: "Complex Product Risk", Keywords: []string{"complex product risk", "structured product risk", "complexity risk"}},
	{Name: "Synthetic Risk", Keywords: []string{"synthetic risk", "replication risk", "tracking risk"}},
	{Name: "Default Risk", Keywords: []string{"bond default", "payment default", "unable to make payments"},
		Description: "issuer inability to pay debt obligations"},
	{Name: "ELN Risk", Keywords: []string{"eln risk", "equity linked note risk", "equity-linked note risk", "structured note risk"},
		Description: "equity linked notes structured products"},
	{Name: "Prepayment Risk", Keywords: []string{"prepayment risk", "prepayment and extension risk", "early repayment risk", "call risk", "extension risk"},
		Description: "early repayment extension callable securities"},

	// ESG and sustainability.
	{Name: "ESG Risk", Keywords: []string{"esg risk", "sustainability risk", "environmental risk", "social risk", "governance risk"}},
	{Name: "Climate Risk", Keywords: []string{"climate risk", "climate change risk"}},

	// Emerging markets.
	{Name: "Emerging Market Risk", Keywords: []string{"emerging market risk", "emerging markets risk", "developing market risk"},
		Description: "developing markets political instability"},
	{Name: "Capital Controls Risk", Keywords: []string{"capital controls risk", "capital restriction risk"}},

	// Other common risks.
	{Name: "Reputation Risk", Keywords: []string{"reputation risk", "reputational risk"}},
	{Name: "Technology Risk", Keywords: []string{"technology risk", "cyber risk", "it risk"}},
	{Name: "Reinvestment Risk", Keywords: []string{"reinvestment risk"}},
}
