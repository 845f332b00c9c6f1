package prompt

const outputInstruction = `**Output Format:**
Return ONLY a JSON object with a single key "solidityCode" whose value is the complete Solidity source as a string. Do not add explanations, comments outside the code or markdown fences around the JSON.
Example: { "solidityCode": "pragma solidity ^0.8.20; ..." }
`

const standardTemplate = `
You are a senior Solidity engineer who writes secure, gas efficient token contracts for EVM-compatible chains.
Write a Solidity smart contract for a standard ERC-20 token deployed on the {{.Chain}} blockchain.

**Contract Requirements:**
1.  Use Solidity version ^0.8.20.
2.  Import ` + "`ERC20.sol`" + ` and ` + "`Ownable.sol`" + ` from OpenZeppelin (` + "`@openzeppelin/contracts/`" + `).
3.  Name the contract "{{.ContractName}}".
4.  The token name is "{{.Name}}".
5.  The token symbol is "{{.Symbol}}".
6.  The token uses {{.Decimals}} decimals.
7.  The total supply is {{.TotalSupply}} tokens. Scale the minted amount by the decimals (for example ` + "`_mint(msg.sender, {{.TotalSupply}} * 10**{{.Decimals}})`" + `).
8.  Mint the whole supply to the deployer (` + "`msg.sender`" + `) in the constructor.
9.  The contract inherits from ` + "`ERC20`" + ` and ` + "`Ownable`" + `.

` + outputInstruction

const liquidityTemplate = `
You are a senior Solidity engineer who writes secure, gas efficient DeFi token contracts for EVM-compatible chains.
Write a complete Solidity smart contract for an ERC-20 token with automatic liquidity generation and a marketing fee, deployed on the {{.Chain}} blockchain.

**Contract Requirements:**
1.  Use Solidity version ^0.8.20.
2.  Import ` + "`ERC20.sol`" + ` and ` + "`Ownable.sol`" + ` from OpenZeppelin and declare the ` + "`IUniswapV2Router02`" + ` and ` + "`IUniswapV2Factory`" + ` interfaces.
3.  Name the contract "{{.ContractName}}".
4.  Token details: name "{{.Name}}", symbol "{{.Symbol}}", {{.Decimals}} decimals.
5.  Total supply: {{.TotalSupply}} tokens, minted to the deployer.
6.  **Fees:**
    - Liquidity fee: {{.LiquidityFee}}%
    - Marketing fee: {{.MarketingFee}}%
7.  **Fee collection:**
    - Take the fees from the sender on every transfer.
    - Account for liquidity tokens and marketing tokens separately inside the contract.
    - The owner, the contract itself and the DEX pair are excluded from fees.
8.  **Automatic liquidity:**
    - Once the collected liquidity tokens reach a swap threshold (for example 500,000 tokens), trigger a swap-and-liquify.
    - Swap half of the threshold for {{.NativeSymbol}}, the native currency of {{.Chain}}, and add it to the DEX as liquidity with the other half.
    - Swap the marketing tokens for {{.NativeSymbol}} and send it to the marketing wallet.
9.  **DEX:**
    - Use this Uniswap V2 compatible router: ` + "`{{.RouterAddress}}`" + `.
10. **Wallets:**
    - Marketing proceeds go to ` + "`{{.MarketingWallet}}`" + `.
11. **Owner controls:**
    - Update the fee percentages, the marketing wallet and the swap threshold.
    - Trigger swap-and-liquify manually.
    - Exclude addresses from fees and include them again.
    - Transfers between excluded addresses pay no fee.

` + outputInstruction
