package chain

// supplyChainABI is the subset of the SupplyChain contract ABI this service calls.
const supplyChainABI = `[
  {"type":"function","name":"fileInsuranceClaimFor","stateMutability":"nonpayable",
   "inputs":[{"name":"_farmAddress","type":"address"},{"name":"_sensorType","type":"string"},{"name":"_sensorValue","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"setSensorServiceAccount","stateMutability":"nonpayable",
   "inputs":[{"name":"_serviceAccount","type":"address"}],
   "outputs":[]},
  {"type":"function","name":"roles","stateMutability":"view",
   "inputs":[{"name":"","type":"address"}],
   "outputs":[{"name":"","type":"uint8","internalType":"enum Roles.Role"}]},
  {"type":"function","name":"owner","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"sensorServiceAccount","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"getClaimsByFarmer","stateMutability":"view",
   "inputs":[{"name":"_farmerAddress","type":"address"}],
   "outputs":[{"name":"","type":"tuple[]","internalType":"struct SupplyChain.InsuranceClaim[]",
     "components":[
       {"name":"claimId","type":"uint256"},
       {"name":"claimant","type":"address"},
       {"name":"sensorType","type":"string"},
       {"name":"sensorValue","type":"string"},
       {"name":"timestamp","type":"uint256"},
       {"name":"status","type":"string"}]}]},
  {"type":"event","name":"InsuranceClaimFiled","anonymous":false,
   "inputs":[
     {"name":"claimId","type":"uint256","indexed":false},
     {"name":"claimant","type":"address","indexed":true},
     {"name":"sensorType","type":"string","indexed":false},
     {"name":"sensorValue","type":"string","indexed":false},
     {"name":"timestamp","type":"uint256","indexed":false}]}
]`
